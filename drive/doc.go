// Package drive provides the core abstractions shared by all drive adapters.
//
// A drive is a versioned, append-only file tree owned by an external library.
// This package only describes its contract: the operations that complete through
// a trailing callback of shape (err, ...results), the plain properties that are
// re-read on every access, and the synchronous companion operations that derive
// new drives or diff two of them.
//
// Key types:
//   - Drive: the raw callback-style contract
//   - ErrorCallback, Callback, Callback2: completion callbacks with zero, one, or two results
//   - Stat, MountInfo, FileStats, DownloadStats, DiffEntry: values passed to callbacks
//   - Logger, ContextualLogger, MetricsCollector, TracingCollector: optional observability hooks
//
// Common usage pattern:
//
//	raw.ReadFile("/hello.txt", nil, func(err error, data []byte) {
//		if err != nil {
//			// handle error
//		}
//		// use data
//	})
//
// The promisedrive package wraps a Drive so the same operations can also be awaited:
//
//	adapted, _ := promisedrive.Wrap(raw)
//	data, err := adapted.ReadFile("/hello.txt", nil).Await(ctx)
package drive
