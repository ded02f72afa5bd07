// Package manager owns the published configuration snapshot and keeps it
// current.
//
// A Store loads the configuration file, builds the immutable suppression
// flags, and publishes both as a Snapshot through an atomic pointer.
// Readers on the growth path call Store.Flags without taking a lock and
// always observe one complete snapshot.
//
// # Load and Reload
//
// The first Load that fails publishes defaults, which suppress every
// category, and returns a *LoadError with Defaulted set. Later failures
// keep the last good snapshot:
//
//	store := manager.NewStore("config/static-vines.yaml",
//	    manager.WithLogger(logger),
//	    manager.WithRecorder(collector),
//	)
//	if err := store.Load(); err != nil {
//	    logger.Warn("running on defaults", "error", err)
//	}
//	eng, err := engine.New(engineCfg, store, logger)
//
// # Hot Reload
//
// Store.Watch reloads after the file changes, debounced by a FileWatcher.
// A ResyncScheduler reloads on a cron schedule for file systems where
// change notifications are unreliable.
//
// Changes to growth.extra_blocks are logged and applied on restart, since
// the classifier is built once at startup.
package manager
