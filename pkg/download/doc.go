// Package download implements the concurrent, integrity-checked download
// engine.
//
// # Overview
//
// Resolution tasks add [Entry] values to a shared [List]; the list is then
// executed once with [List.Run]:
//
//	var dl download.List
//	dl.AddVerified(download.Entry{URL: u, Dest: path, Size: n, SHA1: sum})
//	err := dl.Run(ctx, sess, watcher, 8)
//
// # Execution
//
// Entries are partitioned round-robin across a fixed number of workers, so
// entry i always goes to worker i mod W and every entry is attempted exactly
// once. Each transfer streams into a temporary file next to its destination,
// is checked against the expected size and SHA-1, and is renamed into place
// only when both match. A failed entry never leaves a file at its
// destination.
//
// Events are produced by workers but delivered to the watcher from the
// goroutine that called Run, so watchers need no locking. Each worker's
// [event.DownloadProgress] stream is ordered; streams of different workers
// interleave.
//
// # Failures
//
// A failing entry does not stop its siblings. When the pass ends, every
// failure is returned together in an [*Error], ordered as the entries were
// added. The engine never retries; callers that want retries run the list
// again.
package download
