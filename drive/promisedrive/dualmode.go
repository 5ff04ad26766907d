package promisedrive

import (
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// WriteResult holds the two values a descriptor write completes with.
type WriteResult struct {
	BytesWritten int
	Buffer       []byte
}

// DownloadResult holds the aggregate and per-file statistics a download completes with.
type DownloadResult struct {
	Total  *drive.DownloadStats
	ByFile map[string]*drive.DownloadStats
}

// The last supplied callback decides the calling convention of each call:
// a non-nil one gets the raw completion, otherwise a promise is returned.

func dualMode0(cbs []drive.ErrorCallback, invoke func(done drive.ErrorCallback)) *Promise[None] {
	if n := len(cbs); n > 0 && cbs[n-1] != nil {
		invoke(cbs[n-1])
		return nil
	}

	p := newPromise[None]()
	invoke(func(err error) {
		if err != nil {
			p.reject(err)
			return
		}
		p.resolve(None{})
	})

	return p
}

func dualMode1[T any](cbs []drive.Callback[T], invoke func(done drive.Callback[T])) *Promise[T] {
	if n := len(cbs); n > 0 && cbs[n-1] != nil {
		invoke(cbs[n-1])
		return nil
	}

	p := newPromise[T]()
	invoke(func(err error, result T) {
		if err != nil {
			p.reject(err)
			return
		}
		p.resolve(result)
	})

	return p
}

func dualMode2[A, B, R any](
	cbs []drive.Callback2[A, B],
	combine func(A, B) R,
	invoke func(done drive.Callback2[A, B]),
) *Promise[R] {

	if n := len(cbs); n > 0 && cbs[n-1] != nil {
		invoke(cbs[n-1])
		return nil
	}

	p := newPromise[R]()
	invoke(func(err error, first A, second B) {
		if err != nil {
			p.reject(err)
			return
		}
		p.resolve(combine(first, second))
	})

	return p
}

// Ready completes once the drive is ready for use.
func (d *Drive) Ready(cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Ready(done)
	})
}

// ReadFile reads the whole content of name.
func (d *Drive) ReadFile(name string, opts *drive.ReadOptions, cb ...drive.Callback[[]byte]) *Promise[[]byte] {
	return dualMode1(cb, func(done drive.Callback[[]byte]) {
		d.h.ReadFile(name, opts, done)
	})
}

// WriteFile replaces the content of name with data.
func (d *Drive) WriteFile(name string, data []byte, opts *drive.WriteOptions, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.WriteFile(name, data, opts, done)
	})
}

// Unlink removes the file name.
func (d *Drive) Unlink(name string, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Unlink(name, done)
	})
}

// Mkdir creates the directory name.
func (d *Drive) Mkdir(name string, opts *drive.MkdirOptions, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Mkdir(name, opts, done)
	})
}

// Rmdir removes the empty directory name.
func (d *Drive) Rmdir(name string, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Rmdir(name, done)
	})
}

// Readdir lists the entry names of the directory name.
func (d *Drive) Readdir(name string, opts *drive.ReaddirOptions, cb ...drive.Callback[[]string]) *Promise[[]string] {
	return dualMode1(cb, func(done drive.Callback[[]string]) {
		d.h.Readdir(name, opts, done)
	})
}

// Stat follows symlinks and mounts.
func (d *Drive) Stat(name string, opts *drive.StatOptions, cb ...drive.Callback[*drive.Stat]) *Promise[*drive.Stat] {
	return dualMode1(cb, func(done drive.Callback[*drive.Stat]) {
		d.h.Stat(name, opts, done)
	})
}

// Lstat does not follow a trailing symlink.
func (d *Drive) Lstat(name string, opts *drive.StatOptions, cb ...drive.Callback[*drive.Stat]) *Promise[*drive.Stat] {
	return dualMode1(cb, func(done drive.Callback[*drive.Stat]) {
		d.h.Lstat(name, opts, done)
	})
}

// Access checks that name exists.
func (d *Drive) Access(name string, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Access(name, done)
	})
}

// Open opens name with the given flags ("r", "w", "a", ...) and completes with a descriptor.
func (d *Drive) Open(name string, flags string, cb ...drive.Callback[int]) *Promise[int] {
	return dualMode1(cb, func(done drive.Callback[int]) {
		d.h.Open(name, flags, done)
	})
}

// Read fills buf[offset:offset+length] from the descriptor and completes with the byte count.
func (d *Drive) Read(
	fd int,
	buf []byte,
	offset, length int,
	position int64,
	cb ...drive.Callback[int],
) *Promise[int] {

	return dualMode1(cb, func(done drive.Callback[int]) {
		d.h.Read(fd, buf, offset, length, position, done)
	})
}

// Write writes buf[offset:offset+length] to the descriptor.
func (d *Drive) Write(
	fd int,
	buf []byte,
	offset, length int,
	position int64,
	cb ...drive.Callback2[int, []byte],
) *Promise[WriteResult] {

	return dualMode2(
		cb,
		func(n int, b []byte) WriteResult { return WriteResult{BytesWritten: n, Buffer: b} },
		func(done drive.Callback2[int, []byte]) {
			d.h.Write(fd, buf, offset, length, position, done)
		},
	)
}

// Symlink creates linkName pointing at target.
func (d *Drive) Symlink(target, linkName string, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Symlink(target, linkName, done)
	})
}

// Mount mounts the drive with key at path.
func (d *Drive) Mount(path string, key []byte, opts *drive.MountOptions, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Mount(path, key, opts, done)
	})
}

// Unmount removes the drive mounted at path.
func (d *Drive) Unmount(path string, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Unmount(path, done)
	})
}

// GetAllMounts completes with every mount keyed by its path, the root mount included.
func (d *Drive) GetAllMounts(
	opts *drive.MountsOptions,
	cb ...drive.Callback[map[string]*drive.MountInfo],
) *Promise[map[string]*drive.MountInfo] {

	return dualMode1(cb, func(done drive.Callback[map[string]*drive.MountInfo]) {
		d.h.GetAllMounts(opts, done)
	})
}

// Close closes the drive itself.
func (d *Drive) Close(cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Close(done)
	})
}

// CloseFD closes a descriptor returned by Open.
func (d *Drive) CloseFD(fd int, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.CloseFD(fd, done)
	})
}

// FileStats counts the blocks of name and how many of them are stored locally.
func (d *Drive) FileStats(name string, cb ...drive.Callback[*drive.FileStats]) *Promise[*drive.FileStats] {
	return dualMode1(cb, func(done drive.Callback[*drive.FileStats]) {
		d.h.FileStats(name, done)
	})
}

// Truncate cuts or zero-extends name to size bytes.
func (d *Drive) Truncate(name string, size int64, cb ...drive.ErrorCallback) *Promise[None] {
	return dualMode0(cb, func(done drive.ErrorCallback) {
		d.h.Truncate(name, size, done)
	})
}

// Download fetches the blocks below name and completes with total and per-file statistics.
// The handle of the running download is returned in both calling styles; its Cancel
// completes the download with drive.ErrDownloadCancelled.
func (d *Drive) Download(
	name string,
	opts *drive.DownloadOptions,
	cb ...drive.Callback2[*drive.DownloadStats, map[string]*drive.DownloadStats],
) (*Promise[DownloadResult], drive.DownloadHandle) {

	var handle drive.DownloadHandle

	p := dualMode2(
		cb,
		func(total *drive.DownloadStats, byFile map[string]*drive.DownloadStats) DownloadResult {
			return DownloadResult{Total: total, ByFile: byFile}
		},
		func(done drive.Callback2[*drive.DownloadStats, map[string]*drive.DownloadStats]) {
			handle = d.h.Download(name, opts, done)
		},
	)

	return p, handle
}
