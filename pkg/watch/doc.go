// Package watch re-runs an estimation whenever its dataset file changes.
//
// The watcher monitors the dataset's parent directory rather than the file
// itself, since most editors and data pipelines replace files atomically
// (write temp, rename over target), which would otherwise drop the watch.
// Rapid event bursts are debounced so a single rewrite triggers one refit.
package watch
