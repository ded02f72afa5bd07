package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coder-hombre/static-vines/pkg/policy/manager"
)

type fixedStatus manager.Status

func (f fixedStatus) Status() manager.Status { return manager.Status(f) }

func TestNew_DefaultTimeout(t *testing.T) {
	if got := New(0).checkTimeout; got != 5*time.Second {
		t.Errorf("checkTimeout = %v, want 5s", got)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("checkTimeout = %v, want 1s", got)
	}
}

func TestChecker_RegisterAndList(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("b", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })
	c.RegisterCheck("a", func(context.Context) error { return nil })

	if diff := cmp.Diff([]string{"a", "b"}, c.ListChecks()); diff != "" {
		t.Errorf("ListChecks mismatch (-want +got):\n%s", diff)
	}

	c.UnregisterCheck("a")
	if diff := cmp.Diff([]string{"b"}, c.ListChecks()); diff != "" {
		t.Errorf("ListChecks mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantChecks: map[string]string{"a": StatusOK, "b": StatusOK},
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("down") },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"a": StatusOK, "b": StatusUnhealthy},
		},
		{
			name: "panicking check",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { panic("boom") },
			},
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"a": StatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, fn := range tt.checks {
				c.RegisterCheck(name, fn)
			}

			got := c.CheckReadiness(context.Background())
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			statuses := make(map[string]string, len(got.Checks))
			for name, r := range got.Checks {
				statuses[name] = r.Status
			}
			if diff := cmp.Diff(tt.wantChecks, statuses); diff != "" {
				t.Errorf("check statuses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	got := c.CheckReadiness(context.Background())
	r := got.Checks["slow"]
	if r.Status != StatusUnhealthy || r.Message != ErrCheckTimeout.Error() {
		t.Errorf("result = %+v, want timeout", r)
	}
	// Let the abandoned check goroutine finish.
	time.Sleep(30 * time.Millisecond)
}

func TestSnapshotCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  manager.Status
		wantErr string
	}{
		{
			name:    "nothing published",
			status:  manager.Status{},
			wantErr: "no configuration snapshot",
		},
		{
			name:    "defaulted",
			status:  manager.Status{Generation: 1, Defaulted: true, LastError: "no such file"},
			wantErr: "serving default configuration: no such file",
		},
		{
			name:    "failed reload",
			status:  manager.Status{Generation: 3, LastError: "bad yaml"},
			wantErr: "serving generation 3: bad yaml",
		},
		{
			name:   "healthy",
			status: manager.Status{Generation: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SnapshotCheck(fixedStatus(tt.status))(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWatcherCheck(t *testing.T) {
	if err := WatcherCheck(func() bool { return true })(context.Background()); err != nil {
		t.Errorf("running watcher reported %v", err)
	}
	if err := WatcherCheck(func() bool { return false })(context.Background()); err == nil {
		t.Error("stopped watcher reported healthy")
	}
}

func TestHandlers(t *testing.T) {
	c := New(time.Second)
	healthy := true
	c.RegisterCheck("config_snapshot", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	mux := http.NewServeMux()
	Register(mux, c, NewVersionInfo("1.2.3", "abc123", "2026-03-01"))

	tests := []struct {
		name     string
		method   string
		path     string
		healthy  bool
		wantCode int
		wantBody string
	}{
		{"liveness", http.MethodGet, "/health", true, http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/ready", true, http.StatusOK, `"status":"ready"`},
		{"not ready", http.MethodGet, "/ready", false, http.StatusServiceUnavailable, `"status":"degraded"`},
		{"version", http.MethodGet, "/version", true, http.StatusOK, `"version":"1.2.3"`},
		{"head has no body", http.MethodHead, "/health", true, http.StatusOK, ""},
		{"post rejected", http.MethodPost, "/health", true, http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy = tt.healthy
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			body := rec.Body.String()
			if tt.wantBody == "" && body != "" {
				t.Errorf("expected empty body, got %q", body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %q, want containing %q", body, tt.wantBody)
			}
		})
	}
}

func TestVersionHandler_GoVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(NewVersionInfo("dev", "none", "unknown"))(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}

type fakeGit struct {
	running bool
	bad     string
}

func (f fakeGit) IsRunning() bool   { return f.running }
func (f fakeGit) BadCommit() string { return f.bad }

func TestGitCheck(t *testing.T) {
	tests := []struct {
		name    string
		src     fakeGit
		wantErr string
	}{
		{name: "healthy", src: fakeGit{running: true}},
		{name: "stopped", src: fakeGit{}, wantErr: "not running"},
		{name: "rejected commit", src: fakeGit{running: true, bad: "deadbeef"}, wantErr: "commit deadbeef was rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GitCheck(tt.src)(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
