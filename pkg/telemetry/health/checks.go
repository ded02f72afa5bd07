package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder-hombre/static-vines/pkg/policy/manager"
)

// StatusSource reports the configuration store's load history.
// *manager.Store implements it.
type StatusSource interface {
	Status() manager.Status
}

// SnapshotCheck fails until a configuration snapshot is published, while
// the store is serving defaults after a failed initial load, and after a
// failed reload until the next successful one.
func SnapshotCheck(src StatusSource) CheckFunc {
	return func(ctx context.Context) error {
		st := src.Status()
		switch {
		case st.Generation == 0:
			return errors.New("no configuration snapshot published")
		case st.Defaulted:
			return fmt.Errorf("serving default configuration: %s", st.LastError)
		case st.LastError != "":
			return fmt.Errorf("last configuration load failed, serving generation %d: %s", st.Generation, st.LastError)
		}
		return nil
	}
}

// WatcherCheck fails when the configuration watcher is expected to run but
// running reports false.
func WatcherCheck(running func() bool) CheckFunc {
	return func(ctx context.Context) error {
		if !running() {
			return errors.New("configuration watcher is not running")
		}
		return nil
	}
}

// GitSource reports the state of a git configuration poller.
// *git.Poller implements it.
type GitSource interface {
	IsRunning() bool
	BadCommit() string
}

// GitCheck fails while the poller is stopped or while the latest commit's
// configuration is rejected.
func GitCheck(src GitSource) CheckFunc {
	return func(ctx context.Context) error {
		if !src.IsRunning() {
			return errors.New("git poller is not running")
		}
		if sha := src.BadCommit(); sha != "" {
			return fmt.Errorf("configuration from commit %s was rejected", sha)
		}
		return nil
	}
}
