// Package health provides liveness, readiness and version endpoints for
// the admin server.
//
// Liveness only reports that the process is up. Readiness runs the
// registered component checks; the standard ones are SnapshotCheck, which
// reports whether a good configuration snapshot is being served, and
// WatcherCheck, which reports whether hot reload is still running.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("config_snapshot", health.SnapshotCheck(store))
//	health.Register(mux, checker, health.NewVersionInfo(version, commit, buildTime))
package health
