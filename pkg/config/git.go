package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Git source defaults.
const (
	DefaultGitBranch       = "main"
	DefaultGitFile         = "staticvines.yaml"
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitTimeout      = 10 * time.Second
)

// GitSourceConfig describes a git repository that holds the configuration
// file. It is given on the command line, not in the file it points at.
type GitSourceConfig struct {
	// Repository is the clone URL or a local path.
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// File is the configuration file path inside the repository.
	// Default: "staticvines.yaml"
	File string `yaml:"file"`

	// Auth selects the transport credentials.
	Auth GitAuthConfig `yaml:"auth"`

	// PollInterval is how often the remote is fetched.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds each clone or pull.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Depth limits clone history. Zero clones the full history.
	Depth int `yaml:"depth"`

	// LocalPath is where the repository is cloned.
	// Default: <os temp dir>/staticvines-config
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes LocalPath before cloning.
	CleanOnStart bool `yaml:"clean_on_start"`
}

// GitAuthConfig selects git credentials.
type GitAuthConfig struct {
	// Type is "none", "token" or "ssh".
	// Default: "none"
	Type string `yaml:"type"`

	// Token is a personal access token for HTTPS remotes. When empty it is
	// read from STATICVINES_GIT_TOKEN.
	Token string `yaml:"token"`

	// SSHKeyPath is a private key file for SSH remotes.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase unlocks SSHKeyPath.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// ApplyDefaults fills unset fields.
func (g *GitSourceConfig) ApplyDefaults() {
	if g.Branch == "" {
		g.Branch = DefaultGitBranch
	}
	if g.File == "" {
		g.File = DefaultGitFile
	}
	if g.PollInterval == 0 {
		g.PollInterval = DefaultGitPollInterval
	}
	if g.Timeout == 0 {
		g.Timeout = DefaultGitTimeout
	}
	if g.LocalPath == "" {
		g.LocalPath = filepath.Join(os.TempDir(), "staticvines-config")
	}
	if g.Auth.Type == "" {
		g.Auth.Type = "none"
	}
	if g.Auth.Type == "token" && g.Auth.Token == "" {
		g.Auth.Token = os.Getenv(EnvPrefix + "GIT_TOKEN")
	}
}

// Validate checks a git source after ApplyDefaults.
func (g *GitSourceConfig) Validate() error {
	var errs []error
	if g.Repository == "" {
		errs = append(errs, errors.New("git.repository is required"))
	}
	if g.File == "" || path.IsAbs(g.File) || strings.HasPrefix(path.Clean(g.File), "..") {
		errs = append(errs, fmt.Errorf("git.file %q must be a relative path inside the repository", g.File))
	}
	if g.PollInterval <= 0 {
		errs = append(errs, errors.New("git.poll_interval must be positive"))
	}
	if g.Timeout <= 0 {
		errs = append(errs, errors.New("git.timeout must be positive"))
	}
	if g.Depth < 0 {
		errs = append(errs, errors.New("git.depth cannot be negative"))
	}
	switch g.Auth.Type {
	case "none":
	case "token":
		if g.Auth.Token == "" {
			errs = append(errs, fmt.Errorf("git.auth: token auth requires a token or %sGIT_TOKEN", EnvPrefix))
		}
	case "ssh":
		if g.Auth.SSHKeyPath == "" {
			errs = append(errs, errors.New("git.auth: ssh auth requires ssh_key_path"))
		}
	default:
		errs = append(errs, fmt.Errorf("git.auth: unknown type %q", g.Auth.Type))
	}
	return errors.Join(errs...)
}

// ConfigPath returns the configuration file inside the local clone.
func (g *GitSourceConfig) ConfigPath() string {
	return filepath.Join(g.LocalPath, filepath.FromSlash(g.File))
}
