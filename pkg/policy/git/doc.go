// Package git keeps the configuration file in sync with a git repository.
//
// A Repository clones the tracked branch into a local directory and
// fast-forwards it on Pull. A Poller pulls on an interval and tells the
// configuration store to reload when a pull touches the configuration
// file. Commits that only change other files are skipped.
//
// A commit whose configuration fails to load is not rolled back in the
// clone. The store keeps the last good snapshot in memory, and the commit
// is reported by BadCommit until a later commit loads.
package git
