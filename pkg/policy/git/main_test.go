package git

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/coder-hombre/static-vines/pkg/config"
)

const initialConfig = `growth:
  kelp: true
  regular_vine: true
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// initRemote creates a repository with one commit holding the
// configuration file. go-git initializes on the "master" branch.
func initRemote(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	commitFile(t, repo, dir, config.DefaultGitFile, initialConfig, "initial configuration")
	return dir, repo
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, msg string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

func sourceConfig(t *testing.T, remote string) *config.GitSourceConfig {
	t.Helper()
	cfg := &config.GitSourceConfig{
		Repository:   remote,
		Branch:       "master",
		LocalPath:    filepath.Join(t.TempDir(), "clone"),
		PollInterval: 20 * time.Millisecond,
	}
	cfg.ApplyDefaults()
	return cfg
}

func cloneRemote(t *testing.T, remote string) *Repository {
	t.Helper()
	r, err := NewRepository(sourceConfig(t, remote))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := r.Clone(t.Context()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	return r
}
