package drive

import (
	"io"
)

// CurrentPosition tells Read and Write to use (and advance) the descriptor's own position.
const CurrentPosition int64 = -1

// Event names emitted by drives.
const (
	EventReady     = "ready"
	EventClose     = "close"
	EventUpdate    = "update"
	EventPeerAdd   = "peer-add"
	EventExtension = "extension"
	EventError     = "error"

	// EventFinish and EventCancel are emitted by a DownloadHandle.
	EventFinish = "finish"
	EventCancel = "cancel"
)

// EventEmitter is the subscribe/emit capability every drive carries.
type EventEmitter interface {
	// On registers listener for event and returns a function that removes it again.
	On(event string, listener Listener) (unsubscribe func())
	Emit(event string, args ...any)
}

// DownloadHandle controls a running download.
//
// It emits EventFinish with the total and per-file statistics, EventCancel with a nil error
// and the statistics reached so far, or EventError with the failure. A cancelled download
// completes its callback with ErrDownloadCancelled and the partial statistics.
type DownloadHandle interface {
	EventEmitter
	Cancel()
}

// Peer is the property surface shared by raw and wrapped drives.
// Companion operations accept a Peer so callers can pass either form.
type Peer interface {
	Key() []byte
	Version() uint64
}

// FileReader is the structural marker used to recognize an already constructed drive.
type FileReader interface {
	ReadFile(name string, opts *ReadOptions, cb Callback[[]byte])
}

// Drive is the raw callback-style contract of a drive.
//
// Operations taking a trailing callback report completion exactly once through it,
// with a non-nil error on failure. Property getters reflect the live state and may
// change between calls (Version grows with every mutation).
type Drive interface {
	EventEmitter
	Peer
	FileReader

	DiscoveryKey() []byte
	Writable() bool

	Ready(cb ErrorCallback)
	WriteFile(name string, data []byte, opts *WriteOptions, cb ErrorCallback)
	Unlink(name string, cb ErrorCallback)
	Mkdir(name string, opts *MkdirOptions, cb ErrorCallback)
	Rmdir(name string, cb ErrorCallback)
	Readdir(name string, opts *ReaddirOptions, cb Callback[[]string])
	Stat(name string, opts *StatOptions, cb Callback[*Stat])
	Lstat(name string, opts *StatOptions, cb Callback[*Stat])
	Access(name string, cb ErrorCallback)
	Open(name string, flags string, cb Callback[int])
	Read(fd int, buf []byte, offset, length int, position int64, cb Callback[int])
	Write(fd int, buf []byte, offset, length int, position int64, cb Callback2[int, []byte])
	Symlink(target, linkName string, cb ErrorCallback)
	Mount(path string, key []byte, opts *MountOptions, cb ErrorCallback)
	Unmount(path string, cb ErrorCallback)
	GetAllMounts(opts *MountsOptions, cb Callback[map[string]*MountInfo])
	Close(cb ErrorCallback)
	CloseFD(fd int, cb ErrorCallback)
	FileStats(name string, cb Callback[*FileStats])
	Truncate(name string, size int64, cb ErrorCallback)
	// Download fetches the blocks below name. The returned handle cancels it.
	Download(name string, opts *DownloadOptions, cb Callback2[*DownloadStats, map[string]*DownloadStats]) DownloadHandle

	// Checkout returns a read-only view of the drive at version.
	Checkout(version uint64, opts *CheckoutOptions) (Drive, error)
	// CreateDiffStream streams the differences between this drive and other below prefix.
	// A nil other diffs against the empty drive.
	CreateDiffStream(other Drive, prefix string, opts *DiffOptions) (DiffStream, error)

	CreateReadStream(name string, opts *ReadStreamOptions) (io.ReadCloser, error)
	CreateWriteStream(name string, opts *WriteOptions) (io.WriteCloser, error)
	Watch(prefix string, onChange func()) (unwatch func())
	Extension(name string, message []byte)
}

// Factory constructs a raw drive from constructor arguments.
type Factory func(args ...any) (Drive, error)
