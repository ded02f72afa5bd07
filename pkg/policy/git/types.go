package git

import (
	"time"
)

// CommitInfo describes the commit a configuration was read from.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Branch    string    `json:"branch"`
}

// Short returns the abbreviated SHA used in log lines.
func (c *CommitInfo) Short() string {
	return shortSHA(c.SHA)
}

// PullResult is the outcome of one pull.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// Touches reports whether file (slash separated, relative to the
// repository root) is among the changed files.
func (r *PullResult) Touches(file string) bool {
	for _, f := range r.ChangedFiles {
		if f == file {
			return true
		}
	}
	return false
}

// RepositoryMetrics tracks git operations.
type RepositoryMetrics struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastCommitSHA   string
	LastPullTime    time.Time
	FailedPulls     int64
	SuccessfulPulls int64
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
