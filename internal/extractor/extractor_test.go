package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedalabs/scriptscan/internal/types"
)

func TestForKind(t *testing.T) {
	for _, kind := range []types.FileKind{
		types.KindGeneralScript,
		types.KindStatisticalScript,
		types.KindNotebook,
	} {
		ext, err := ForKind(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, ext.Kind())
	}

	_, err := ForKind(types.FileKind("spreadsheet"))
	assert.Error(t, err)
}

func TestPythonExtractFunctionsAndClasses(t *testing.T) {
	content := `
import pandas as pd

def clean_data(df):
    return df.dropna()

def load_csv(path):
    return pd.read_csv(path)

class Pipeline:
    def run(self):
        pass
`
	fp := NewPythonExtractor().Extract(content)

	assert.ElementsMatch(t, []string{"clean_data", "load_csv", "run", "Pipeline"}, fp.Functions)
	assert.Equal(t, []string{"pandas"}, fp.Imports)
}

func TestPythonExtractImportForms(t *testing.T) {
	content := `
import os
import numpy as np
import os.path
from sklearn.linear_model import LinearRegression
from collections import OrderedDict, defaultdict
from utils import *
`
	fp := NewPythonExtractor().Extract(content)

	assert.ElementsMatch(t, []string{
		"os",
		"numpy",
		"os.path",
		"sklearn.linear_model.LinearRegression",
		"collections.OrderedDict",
		"collections.defaultdict",
		"utils.*",
	}, fp.Imports)
}

func TestPythonDetectsPlotAndModelSignals(t *testing.T) {
	content := `
import matplotlib.pyplot as plt
import seaborn as sns
from sklearn.ensemble import RandomForestClassifier
import xgboost
`
	fp := NewPythonExtractor().Extract(content)

	assert.ElementsMatch(t, []string{"matplotlib.pyplot", "seaborn"}, fp.PlotSignals)
	assert.ElementsMatch(t,
		[]string{"sklearn.ensemble.RandomForestClassifier", "xgboost"},
		fp.ModelSignals)
}

func TestPythonMalformedInputDegrades(t *testing.T) {
	// A syntax error must never propagate as a failure; whatever parses
	// before the error is still collected.
	fp := NewPythonExtractor().Extract("def broken(:\n  ???")

	require.NotNil(t, fp.Functions)
	require.NotNil(t, fp.Imports)
	assert.Equal(t, 2, fp.LineCount)
}

func TestPythonEmptyContent(t *testing.T) {
	fp := NewPythonExtractor().Extract("")
	assert.Empty(t, fp.Functions)
	assert.Empty(t, fp.Imports)
	assert.Zero(t, fp.LineCount)
}

func TestRScriptExtract(t *testing.T) {
	content := `library(ggplot2)
require("dplyr")
clean_data <- function(df) {
  na.omit(df)
}
model <- lm(y ~ x, data=df)
ggplot(df, aes(x, y)) + geom_point()
`
	fp := NewRScriptExtractor().Extract(content)

	assert.ElementsMatch(t, []string{"ggplot2", "dplyr"}, fp.Imports)
	assert.Equal(t, []string{"clean_data"}, fp.Functions)
	assert.Contains(t, fp.ModelSignals, "model <- lm(y ~ x, data=df)")
	assert.NotEmpty(t, fp.PlotSignals)
}

func TestRScriptSignalsTruncated(t *testing.T) {
	long := "ggplot(df, aes(x, y)) + geom_point() + theme_minimal() + labs(title='quarterly revenue by region')"
	fp := NewRScriptExtractor().Extract(long)

	require.NotEmpty(t, fp.PlotSignals)
	assert.LessOrEqual(t, len(fp.PlotSignals[0]), 50)
}

func TestRScriptIgnoresNonMatchingLines(t *testing.T) {
	fp := NewRScriptExtractor().Extract("# just a comment\nx <- 5\n")
	assert.Empty(t, fp.Functions)
	assert.Empty(t, fp.Imports)
	assert.Empty(t, fp.PlotSignals)
	assert.Empty(t, fp.ModelSignals)
	assert.Equal(t, 2, fp.LineCount)
}

func TestNotebookExtractCounts(t *testing.T) {
	content := `{
  "cells": [
    {"cell_type": "markdown", "source": ["# EDA"]},
    {"cell_type": "code", "source": ["import pandas"]},
    {"cell_type": "code", "source": ["df.head()"]}
  ]
}`
	fp := NewNotebookExtractor().Extract(content)

	assert.Equal(t, 3, fp.CellCount)
	assert.Equal(t, 2, fp.CodeCells)
	assert.Equal(t, 1, fp.MarkdownCells)

	// Known precision limit: notebooks carry no functions or imports
	assert.Empty(t, fp.Functions)
	assert.Empty(t, fp.Imports)
}

func TestNotebookMalformedJSON(t *testing.T) {
	fp := NewNotebookExtractor().Extract("not a notebook at all")
	assert.Zero(t, fp.CellCount)
	assert.NotNil(t, fp.Functions)
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lineCount(tt.content), "content %q", tt.content)
	}
}
