// Package state keeps the notification feed shared between workflow
// goroutines and the UI.
//
// # Overview
//
// Remote operations run off the UI event loop and report their outcome
// through notify.Sink. Store is the sink the application wires in: it
// appends each notification to a bounded history and tracks how many
// transport failures happened in a row, so the header can show the service
// as unreachable without any separate health polling.
//
// # Concurrency
//
// Notify takes a write lock; Snapshot takes a read lock and returns a copy,
// so callers may keep or mutate the result freely.
//
//	store := &state.Store{}
//	pol := policy.New(client, store, logger)
//	...
//	snap := store.Snapshot()
//	if n, ok := snap.Active(time.Now(), 5*time.Second); ok {
//		render(n)
//	}
//
// # Failure streak
//
//   - KindTransport increments ConsecutiveFailures
//   - KindInfo (a success) resets it to zero
//   - validation, render and storage notifications leave it unchanged
//
// IsOffline reports two or more consecutive transport failures.
package state
