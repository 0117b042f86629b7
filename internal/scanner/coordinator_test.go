package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedalabs/scriptscan/internal/types"
)

func TestCoordinatorLifecycle(t *testing.T) {
	fx := newFixture(t)
	fx.source.files[fx.project.ID] = []types.CandidateFile{pyFile("a.py", cleaningScript)}

	coord, err := NewCoordinator(fx.scanner, &CoordinatorConfig{
		Interval:    10 * time.Millisecond,
		ScanOnStart: true,
	})
	require.NoError(t, err)

	require.NoError(t, coord.Start(context.Background()))
	assert.Error(t, coord.Start(context.Background()), "second start is rejected")

	// Wait for at least one pass to complete
	deadline := time.Now().Add(2 * time.Second)
	for coord.LastScan().IsZero() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.False(t, coord.LastScan().IsZero(), "a pass should have completed")

	coord.Stop()
	coord.Stop() // idempotent

	last := coord.LastScan()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, last, coord.LastScan(), "no passes after stop")
}

func TestCoordinatorRejectsMissingScanner(t *testing.T) {
	_, err := NewCoordinator(nil, nil)
	assert.Error(t, err)
}

func TestCoordinatorDefaultsInterval(t *testing.T) {
	fx := newFixture(t)
	coord, err := NewCoordinator(fx.scanner, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultScanInterval, coord.config.Interval)
}
