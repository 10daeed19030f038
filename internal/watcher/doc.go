// Package watcher observes a set of files that external producers write
// without coordination.
//
// Each Watcher owns its path set, appearance poller and stability gate and
// runs them on a single goroutine, so no state is shared between instances.
// Raw fsnotify events are confirmed by sampling size and modification time
// twice, one delay apart, before OnStable is called. Paths that do not exist
// yet are registered by the poller as soon as they appear.
package watcher
