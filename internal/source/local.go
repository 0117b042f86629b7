package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sedalabs/scriptscan/internal/types"
)

// LocalSource walks a directory tree on disk. It serves local
// checkouts and makes the scanner easy to exercise without network
// access.
type LocalSource struct {
	// Root is the directory containing one subdirectory per project,
	// keyed by project name. Empty means each project's RepoURL is
	// treated as a filesystem path.
	Root string

	maxFileSize int64
}

// NewLocalSource creates a directory-backed source
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{Root: root, maxFileSize: DefaultMaxFileSize}
}

// ProjectFiles walks the project's directory and returns every script file
func (s *LocalSource) ProjectFiles(ctx context.Context, project *types.Project) ([]types.CandidateFile, error) {
	dir := s.projectDir(project)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []types.CandidateFile
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			// Hidden directories hold VCS metadata and tool caches
			if strings.HasPrefix(entry.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		kind, ok := types.KindForPath(path)
		if !ok {
			return nil
		}
		fi, err := entry.Info()
		if err != nil {
			return err
		}
		if fi.Size() > s.maxFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, types.CandidateFile{
			Path:    filepath.ToSlash(rel),
			Name:    entry.Name(),
			Kind:    kind,
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *LocalSource) projectDir(project *types.Project) string {
	if s.Root != "" {
		return filepath.Join(s.Root, project.Name)
	}
	return project.RepoURL
}
