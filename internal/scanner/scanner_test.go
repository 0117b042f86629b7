package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedalabs/scriptscan/internal/alerting"
	"github.com/sedalabs/scriptscan/internal/notify"
	"github.com/sedalabs/scriptscan/internal/scoring"
	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

// fakeSource serves canned files per project and can be told to fail
type fakeSource struct {
	mu    sync.Mutex
	files map[string][]types.CandidateFile
	fail  map[string]bool
	calls int
}

func (f *fakeSource) ProjectFiles(_ context.Context, project *types.Project) ([]types.CandidateFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[project.ID] {
		return nil, fmt.Errorf("source unavailable")
	}
	return f.files[project.ID], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type scannerFixture struct {
	store   storage.Storage
	source  *fakeSource
	scanner *Scanner
	project *types.Project
}

func newFixture(t *testing.T) *scannerFixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewStorage(ctx, &storage.Config{
		Path: filepath.Join(t.TempDir(), "scanner.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scorer, err := scoring.NewStructuralScorer(scoring.DefaultConfig())
	require.NoError(t, err)

	manager, err := alerting.NewManager(&alerting.ManagerConfig{
		Store:     store,
		Scorer:    scorer,
		Notifier:  notify.LogNotifier{},
		Threshold: 0.70,
	})
	require.NoError(t, err)

	source := &fakeSource{
		files: make(map[string][]types.CandidateFile),
		fail:  make(map[string]bool),
	}

	scanner, err := NewScanner(&ScannerConfig{
		Store:   store,
		Source:  source,
		Manager: manager,
	})
	require.NoError(t, err)

	project := &types.Project{Name: "thesis", Status: types.ProjectActive,
		RepoURL: "https://github.com/lab/thesis", OwnerID: "owner-1"}
	require.NoError(t, store.CreateProject(ctx, project))

	return &scannerFixture{store: store, source: source, scanner: scanner, project: project}
}

const cleaningScript = `import pandas
import numpy

def load_csv(path):
    return pandas.read_csv(path)

def clean_data(df):
    return df.dropna()
`

func pyFile(path, content string) types.CandidateFile {
	return types.CandidateFile{
		Path:    path,
		Name:    filepath.Base(path),
		Kind:    types.KindGeneralScript,
		Content: content,
	}
}

func TestNewScannerValidatesDependencies(t *testing.T) {
	_, err := NewScanner(nil)
	assert.Error(t, err)

	_, err = NewScanner(&ScannerConfig{})
	assert.Error(t, err)
}

func TestScanIngestsAndAlerts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.source.files[fx.project.ID] = []types.CandidateFile{
		pyFile("analysis/a.py", cleaningScript),
		pyFile("analysis/b.py", cleaningScript),
	}

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 2, stats.FilesSeen)
	assert.Equal(t, 2, stats.FilesUpdated)
	assert.Equal(t, 1, stats.Comparisons, "b.py is compared against the already-ingested a.py")
	assert.Equal(t, 1, stats.AlertsCreated, "identical scripts score 1.0 and alert once")
	assert.Equal(t, 0, stats.FileErrors)

	files, err := fx.store.ListFilesByProject(ctx, fx.project.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Contains(t, f.Fingerprint.Functions, "clean_data")
		assert.Contains(t, f.Fingerprint.Imports, "pandas")
		assert.NotEmpty(t, f.ContentHash)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.source.files[fx.project.ID] = []types.CandidateFile{
		pyFile("analysis/a.py", cleaningScript),
		pyFile("analysis/b.py", cleaningScript),
	}

	_, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesUpdated)
	assert.Equal(t, 0, stats.AlertsCreated)
}

func TestScanSkipsUnchangedFiles(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.source.files[fx.project.ID] = []types.CandidateFile{pyFile("a.py", cleaningScript)}
	_, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)

	before, err := fx.store.GetFileByPath(ctx, fx.project.ID, "a.py")
	require.NoError(t, err)
	require.NotNil(t, before)

	time.Sleep(5 * time.Millisecond)

	_, err = fx.scanner.Scan(ctx)
	require.NoError(t, err)

	after, err := fx.store.GetFileByPath(ctx, fx.project.ID, "a.py")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "unchanged content leaves the record untouched")
	assert.Equal(t, before.Fingerprint, after.Fingerprint)
}

func TestScanReingestsChangedFiles(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.source.files[fx.project.ID] = []types.CandidateFile{pyFile("a.py", cleaningScript)}
	_, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)

	before, err := fx.store.GetFileByPath(ctx, fx.project.ID, "a.py")
	require.NoError(t, err)

	fx.source.files[fx.project.ID] = []types.CandidateFile{
		pyFile("a.py", cleaningScript+"\ndef plot_results(df):\n    pass\n"),
	}

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesUpdated)

	after, err := fx.store.GetFileByPath(ctx, fx.project.ID, "a.py")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID, "re-ingestion keeps the same record")
	assert.NotEqual(t, before.ContentHash, after.ContentHash)
	assert.Contains(t, after.Fingerprint.Functions, "plot_results")
}

func TestScanIsolatesProjectFailures(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	broken := &types.Project{Name: "broken", Status: types.ProjectActive,
		RepoURL: "https://github.com/lab/broken", OwnerID: "owner-2"}
	require.NoError(t, fx.store.CreateProject(ctx, broken))

	fx.source.files[fx.project.ID] = []types.CandidateFile{pyFile("a.py", cleaningScript)}
	fx.source.fail[broken.ID] = true

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err, "one failing project does not abort the pass")
	assert.Equal(t, 2, stats.Projects)
	assert.Equal(t, 1, stats.ProjectErrors)
	assert.Equal(t, 1, stats.FilesUpdated)
}

func TestScanSkipsPausedProjects(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.SetProjectStatus(ctx, fx.project.ID, types.ProjectPaused))
	fx.source.files[fx.project.ID] = []types.CandidateFile{pyFile("a.py", cleaningScript)}

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Projects)
	assert.Equal(t, 0, fx.source.callCount())
}

func TestScanSkipsUnknownKinds(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.source.files[fx.project.ID] = []types.CandidateFile{
		{Path: "README.md", Name: "README.md", Kind: types.FileKind("markdown"), Content: "# hi"},
		pyFile("a.py", cleaningScript),
	}

	stats, err := fx.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSeen)
	assert.Equal(t, 1, stats.FilesUpdated)
}
