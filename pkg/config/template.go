package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileContents is the configuration file written by WriteDefault.
// Loading it yields the same flags as Default.
const DefaultFileContents = `# Static Vines configuration.
#
# Each growth flag suppresses natural growth of one vine family when true.
# Player placement is never affected. Missing flags default to true.
growth:
  regular_vine: true
  cave_vine_head: true
  cave_vine_segment: true
  weeping_vine: true
  twisting_vine: true
  kelp: true

reload:
  # Reload when this file changes.
  watch: true
  debounce: 100ms
  # Optional periodic reload, standard cron syntax. Empty disables it.
  resync_schedule: ""

diagnostics:
  neighbor_scan: false
  log_decisions: false

admin:
  enabled: false
  listen_address: "127.0.0.1:9464"

telemetry:
  logging:
    level: info
    format: text
  metrics:
    enabled: false
    path: /metrics
  tracing:
    # Export reload, replay and admin request spans over OTLP/gRPC.
    enabled: false
    endpoint: localhost:4317
    sampler: always
`

// WriteDefault writes DefaultFileContents to path unless a file already
// exists there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(DefaultFileContents), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default configuration %q: %w", path, err)
	}
	return true, nil
}
