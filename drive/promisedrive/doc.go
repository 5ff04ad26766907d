// Package promisedrive adapts a callback-style drive.Drive into a dual-mode drive.
//
// Every classified operation can be called the traditional way, with a trailing
// completion callback, or without one, in which case it returns a Promise. The
// decision is made per call by looking at the last supplied callback:
//
//	d, _ := promisedrive.Wrap(raw)
//
//	// callback style: the raw completion is delivered unchanged
//	d.ReadFile("/hello.txt", nil, func(err error, data []byte) { ... })
//
//	// promise style
//	data, err := d.ReadFile("/hello.txt", nil).Await(ctx)
//
// Promises resolve with exactly the shape the callback would have received:
// None for operations completing without values, the bare value for a single one
// (Read resolves to the byte count, not a slice of it), and a result struct for
// operations completing with several values (Write, Download). A promise rejects
// with the error the drive reported, unmodified.
//
// Properties (Version, Key, ...) are re-read from the raw drive on every call, events
// and streams are passed through, and the companion operations Checkout and
// CreateDiffStream wrap their results, or unwrap their peer argument, so raw and
// adapted drives never mix.
//
// For callers that address members by name, Member resolves a name through a closed
// classification table and returns either the live property value or a memoized *Func
// that follows the same dual-mode rules.
package promisedrive
