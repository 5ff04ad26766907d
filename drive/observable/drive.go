package observable

import (
	"context"
	"errors"
	"io"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// ErrNilDrive is returned when there is no drive to instrument.
var ErrNilDrive = errors.New("nil drive supplied")

const (
	operationReady        = "ready"
	operationReadFile     = "readFile"
	operationWriteFile    = "writeFile"
	operationUnlink       = "unlink"
	operationMkdir        = "mkdir"
	operationRmdir        = "rmdir"
	operationReaddir      = "readdir"
	operationStat         = "stat"
	operationLstat        = "lstat"
	operationAccess       = "access"
	operationOpen         = "open"
	operationRead         = "read"
	operationWrite        = "write"
	operationSymlink      = "symlink"
	operationMount        = "mount"
	operationUnmount      = "unmount"
	operationGetAllMounts = "getAllMounts"
	operationClose        = "close"
	operationCloseFD      = "closeFd"
	operationFileStats    = "fileStats"
	operationTruncate     = "truncate"
	operationDownload     = "download"
)

// Drive is a drive.Drive that reports every completion-callback operation of the drive it
// decorates to the configured logger, metrics, and tracing collectors.
//
// Completions are forwarded unchanged, after they have been recorded.
type Drive struct {
	raw drive.Drive

	baseCtx          context.Context
	logger           drive.Logger
	contextualLogger drive.ContextualLogger
	metricsCollector drive.MetricsCollector
	tracingCollector drive.TracingCollector
}

// Wrap instruments raw with the given options.
func Wrap(raw drive.Drive, options ...Option) (*Drive, error) {
	if raw == nil {
		return nil, ErrNilDrive
	}

	d := &Drive{
		raw:     raw,
		baseCtx: context.Background(),
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// derive instruments raw with the configuration of d.
func (d *Drive) derive(raw drive.Drive) *Drive {
	derived := *d
	derived.raw = raw

	return &derived
}

// Key returns the key of the raw drive.
func (d *Drive) Key() []byte {
	return d.raw.Key()
}

// DiscoveryKey returns the discovery key of the raw drive.
func (d *Drive) DiscoveryKey() []byte {
	return d.raw.DiscoveryKey()
}

// Version returns the current version of the raw drive.
func (d *Drive) Version() uint64 {
	return d.raw.Version()
}

// Writable reports whether the raw drive accepts mutations.
func (d *Drive) Writable() bool {
	return d.raw.Writable()
}

// On subscribes listener to event on the raw drive.
func (d *Drive) On(event string, listener drive.Listener) (unsubscribe func()) {
	return d.raw.On(event, listener)
}

// Emit emits event on the raw drive.
func (d *Drive) Emit(event string, args ...any) {
	d.raw.Emit(event, args...)
}

// Ready instruments the raw Ready.
func (d *Drive) Ready(cb drive.ErrorCallback) {
	o := d.observe(operationReady, "")
	d.raw.Ready(func(err error) {
		o.finish(err)
		cb(err)
	})
}

// ReadFile instruments the raw ReadFile.
func (d *Drive) ReadFile(name string, opts *drive.ReadOptions, cb drive.Callback[[]byte]) {
	o := d.observe(operationReadFile, name)
	d.raw.ReadFile(name, opts, func(err error, data []byte) {
		o.finish(err)
		cb(err, data)
	})
}

// WriteFile instruments the raw WriteFile.
func (d *Drive) WriteFile(name string, data []byte, opts *drive.WriteOptions, cb drive.ErrorCallback) {
	o := d.observe(operationWriteFile, name)
	d.raw.WriteFile(name, data, opts, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Unlink instruments the raw Unlink.
func (d *Drive) Unlink(name string, cb drive.ErrorCallback) {
	o := d.observe(operationUnlink, name)
	d.raw.Unlink(name, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Mkdir instruments the raw Mkdir.
func (d *Drive) Mkdir(name string, opts *drive.MkdirOptions, cb drive.ErrorCallback) {
	o := d.observe(operationMkdir, name)
	d.raw.Mkdir(name, opts, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Rmdir instruments the raw Rmdir.
func (d *Drive) Rmdir(name string, cb drive.ErrorCallback) {
	o := d.observe(operationRmdir, name)
	d.raw.Rmdir(name, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Readdir instruments the raw Readdir.
func (d *Drive) Readdir(name string, opts *drive.ReaddirOptions, cb drive.Callback[[]string]) {
	o := d.observe(operationReaddir, name)
	d.raw.Readdir(name, opts, func(err error, entries []string) {
		o.finish(err)
		cb(err, entries)
	})
}

// Stat instruments the raw Stat.
func (d *Drive) Stat(name string, opts *drive.StatOptions, cb drive.Callback[*drive.Stat]) {
	o := d.observe(operationStat, name)
	d.raw.Stat(name, opts, func(err error, st *drive.Stat) {
		o.finish(err)
		cb(err, st)
	})
}

// Lstat instruments the raw Lstat.
func (d *Drive) Lstat(name string, opts *drive.StatOptions, cb drive.Callback[*drive.Stat]) {
	o := d.observe(operationLstat, name)
	d.raw.Lstat(name, opts, func(err error, st *drive.Stat) {
		o.finish(err)
		cb(err, st)
	})
}

// Access instruments the raw Access.
func (d *Drive) Access(name string, cb drive.ErrorCallback) {
	o := d.observe(operationAccess, name)
	d.raw.Access(name, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Open instruments the raw Open.
func (d *Drive) Open(name string, flags string, cb drive.Callback[int]) {
	o := d.observe(operationOpen, name)
	d.raw.Open(name, flags, func(err error, fd int) {
		o.finish(err)
		cb(err, fd)
	})
}

// Read and Write have no path; descriptors are not resolved back to names.

// Read instruments the raw Read.
func (d *Drive) Read(fd int, buf []byte, offset, length int, position int64, cb drive.Callback[int]) {
	o := d.observe(operationRead, "")
	d.raw.Read(fd, buf, offset, length, position, func(err error, n int) {
		o.finish(err)
		cb(err, n)
	})
}

// Write instruments the raw Write.
func (d *Drive) Write(fd int, buf []byte, offset, length int, position int64, cb drive.Callback2[int, []byte]) {
	o := d.observe(operationWrite, "")
	d.raw.Write(fd, buf, offset, length, position, func(err error, n int, written []byte) {
		o.finish(err)
		cb(err, n, written)
	})
}

// Symlink instruments the raw Symlink.
func (d *Drive) Symlink(target, linkName string, cb drive.ErrorCallback) {
	o := d.observe(operationSymlink, linkName)
	d.raw.Symlink(target, linkName, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Mount instruments the raw Mount.
func (d *Drive) Mount(path string, key []byte, opts *drive.MountOptions, cb drive.ErrorCallback) {
	o := d.observe(operationMount, path)
	d.raw.Mount(path, key, opts, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Unmount instruments the raw Unmount.
func (d *Drive) Unmount(path string, cb drive.ErrorCallback) {
	o := d.observe(operationUnmount, path)
	d.raw.Unmount(path, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// GetAllMounts instruments the raw GetAllMounts.
func (d *Drive) GetAllMounts(opts *drive.MountsOptions, cb drive.Callback[map[string]*drive.MountInfo]) {
	o := d.observe(operationGetAllMounts, "")
	d.raw.GetAllMounts(opts, func(err error, mounts map[string]*drive.MountInfo) {
		o.finish(err)
		cb(err, mounts)
	})
}

// Close instruments closing the raw drive.
func (d *Drive) Close(cb drive.ErrorCallback) {
	o := d.observe(operationClose, "")
	d.raw.Close(func(err error) {
		o.finish(err)
		cb(err)
	})
}

// CloseFD instruments closing a descriptor of the raw drive.
func (d *Drive) CloseFD(fd int, cb drive.ErrorCallback) {
	o := d.observe(operationCloseFD, "")
	d.raw.CloseFD(fd, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// FileStats instruments the raw FileStats.
func (d *Drive) FileStats(name string, cb drive.Callback[*drive.FileStats]) {
	o := d.observe(operationFileStats, name)
	d.raw.FileStats(name, func(err error, stats *drive.FileStats) {
		o.finish(err)
		cb(err, stats)
	})
}

// Truncate instruments the raw Truncate.
func (d *Drive) Truncate(name string, size int64, cb drive.ErrorCallback) {
	o := d.observe(operationTruncate, name)
	d.raw.Truncate(name, size, func(err error) {
		o.finish(err)
		cb(err)
	})
}

// Download instruments the raw Download until it completes, finished or cancelled,
// and returns the raw handle.
func (d *Drive) Download(
	name string,
	opts *drive.DownloadOptions,
	cb drive.Callback2[*drive.DownloadStats, map[string]*drive.DownloadStats],
) drive.DownloadHandle {
	o := d.observe(operationDownload, name)

	return d.raw.Download(name, opts, func(err error, total *drive.DownloadStats, byFile map[string]*drive.DownloadStats) {
		o.finish(err)
		cb(err, total, byFile)
	})
}

// Checkout returns the raw checkout instrumented like d.
func (d *Drive) Checkout(version uint64, opts *drive.CheckoutOptions) (drive.Drive, error) {
	raw, err := d.raw.Checkout(version, opts)
	if err != nil {
		return nil, err
	}

	return d.derive(raw), nil
}

// CreateDiffStream delegates to the raw drive; an instrumented peer is unwrapped first.
func (d *Drive) CreateDiffStream(other drive.Drive, prefix string, opts *drive.DiffOptions) (drive.DiffStream, error) {
	if peer, ok := other.(*Drive); ok && peer != nil {
		other = peer.raw
	}

	return d.raw.CreateDiffStream(other, prefix, opts)
}

// CreateReadStream is forwarded to the raw drive without instrumentation.
func (d *Drive) CreateReadStream(name string, opts *drive.ReadStreamOptions) (io.ReadCloser, error) {
	return d.raw.CreateReadStream(name, opts)
}

// CreateWriteStream is forwarded to the raw drive without instrumentation.
func (d *Drive) CreateWriteStream(name string, opts *drive.WriteOptions) (io.WriteCloser, error) {
	return d.raw.CreateWriteStream(name, opts)
}

// Watch is forwarded to the raw drive.
func (d *Drive) Watch(prefix string, onChange func()) (unwatch func()) {
	return d.raw.Watch(prefix, onChange)
}

// Extension is forwarded to the raw drive.
func (d *Drive) Extension(name string, message []byte) {
	d.raw.Extension(name, message)
}

var _ drive.Drive = (*Drive)(nil)
