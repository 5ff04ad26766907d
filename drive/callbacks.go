package drive

// ErrorCallback completes an operation that produces no result values.
type ErrorCallback func(err error)

// Callback completes an operation that produces exactly one result value.
type Callback[T any] func(err error, result T)

// Callback2 completes an operation that produces two ordered result values.
type Callback2[A, B any] func(err error, first A, second B)

// Listener receives the arguments of an emitted event.
type Listener func(args ...any)
