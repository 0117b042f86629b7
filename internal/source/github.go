// Package source provides file sources for the scanner: a GitHub
// contents API client for remote repositories and a local directory
// walker for checkouts and tests.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sedalabs/scriptscan/internal/types"
)

const (
	defaultAPIBaseURL = "https://api.github.com"

	// DefaultMaxFileSize skips files larger than this. Research
	// scripts past this size are almost always generated output.
	DefaultMaxFileSize = 1 << 20
)

// GitHubConfig configures a GitHubSource
type GitHubConfig struct {
	// Token is a GitHub access token. Empty means unauthenticated
	// requests, which GitHub rate-limits aggressively.
	Token string

	// BaseURL overrides the API endpoint, mainly for tests and
	// GitHub Enterprise. Empty means api.github.com.
	BaseURL string

	// MaxFileSize in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// HTTPClient overrides the default client
	HTTPClient *http.Client
}

// GitHubSource lists and downloads a repository's script files through
// the GitHub contents API.
type GitHubSource struct {
	token       string
	baseURL     string
	maxFileSize int64
	client      *http.Client
}

// NewGitHubSource creates a source backed by the GitHub API
func NewGitHubSource(cfg *GitHubConfig) *GitHubSource {
	if cfg == nil {
		cfg = &GitHubConfig{}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &GitHubSource{
		token:       cfg.Token,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		maxFileSize: maxSize,
		client:      client,
	}
}

// contentEntry is one item from the contents API listing
type contentEntry struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// ProjectFiles walks the repository tree rooted at the project's repo
// URL and returns every script file with its content.
func (s *GitHubSource) ProjectFiles(ctx context.Context, project *types.Project) ([]types.CandidateFile, error) {
	owner, repo, err := parseRepoURL(project.RepoURL)
	if err != nil {
		return nil, err
	}

	var files []types.CandidateFile
	if err := s.walkDir(ctx, owner, repo, "", &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *GitHubSource) walkDir(ctx context.Context, owner, repo, dir string, files *[]types.CandidateFile) error {
	listURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.baseURL, owner, repo, dir)

	var entries []contentEntry
	if err := s.getJSON(ctx, listURL, &entries); err != nil {
		return fmt.Errorf("failed to list %s/%s at %q: %w", owner, repo, dir, err)
	}

	for _, entry := range entries {
		switch entry.Type {
		case "dir":
			if err := s.walkDir(ctx, owner, repo, entry.Path, files); err != nil {
				return err
			}
		case "file":
			kind, ok := types.KindForPath(entry.Path)
			if !ok {
				continue
			}
			if entry.Size > s.maxFileSize || entry.DownloadURL == "" {
				continue
			}
			content, err := s.download(ctx, entry.DownloadURL)
			if err != nil {
				return fmt.Errorf("failed to download %s: %w", entry.Path, err)
			}
			*files = append(*files, types.CandidateFile{
				Path:    entry.Path,
				Name:    entry.Name,
				Kind:    kind,
				Content: content,
			})
		}
	}
	return nil
}

func (s *GitHubSource) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	body, err := s.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *GitHubSource) download(ctx context.Context, rawURL string) (string, error) {
	body, err := s.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *GitHubSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the error message
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("github returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return io.ReadAll(io.LimitReader(resp.Body, s.maxFileSize+1))
}

// parseRepoURL extracts owner and repo from a GitHub repository URL
// such as https://github.com/lab/thesis or git@github.com:lab/thesis.git
func parseRepoURL(repoURL string) (owner, repo string, err error) {
	if repoURL == "" {
		return "", "", fmt.Errorf("project has no repository URL")
	}

	trimmed := strings.TrimSuffix(repoURL, ".git")

	if strings.HasPrefix(trimmed, "git@") {
		// git@host:owner/repo
		_, path, found := strings.Cut(trimmed, ":")
		if !found {
			return "", "", fmt.Errorf("invalid repository URL %q", repoURL)
		}
		return splitOwnerRepo(path, repoURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", repoURL, err)
	}
	return splitOwnerRepo(strings.Trim(parsed.Path, "/"), repoURL)
}

func splitOwnerRepo(path, original string) (string, string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository URL %q", original)
	}
	return parts[0], parts[1], nil
}
