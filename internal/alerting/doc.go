// Package alerting maintains the duplicate-alert state machine.
//
// The manager compares a changed file's fingerprint against every other
// tracked file of the same kind, across all projects, and guarantees that
// each unordered file pair scoring at or above the threshold has exactly one
// pending alert. Alerts leave the pending state only through an explicit
// user action (dismiss or merge); the engine never auto-resolves. Once
// resolved, an alert is immutable history, and a later qualifying detection
// files a fresh alert rather than reopening the old one.
//
// Creation of an alert triggers exactly one notification dispatch. The
// alert row is committed first and is authoritative; notification failure
// is logged and never rolled back.
//
// Example usage:
//
//	manager, err := alerting.NewManager(&alerting.ManagerConfig{
//	    Store:     store,
//	    Scorer:    scorer,
//	    Notifier:  dispatcher,
//	    Threshold: 0.70,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := manager.ProcessFile(ctx, changedFile)
package alerting
