package drivetest

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

const (
	blockSize = 64 * 1024
	firstFD   = 10
)

var (
	// ErrUnsupportedPeer is returned by CreateDiffStream for peers that are not a *MemDrive.
	ErrUnsupportedPeer = errors.New("diff peer is not an in-memory drive")

	// ErrUnsupportedArgument is returned by Factory for constructor arguments it does not understand.
	ErrUnsupportedArgument = errors.New("unsupported in-memory drive constructor argument")
)

type entry struct {
	stat drive.Stat
	data []byte
}

type snapshot map[string]entry

// history is shared between a drive and all of its checkouts.
type history struct {
	mu       sync.Mutex
	versions []snapshot
}

func (h *history) latest() (snapshot, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.versions[len(h.versions)-1], uint64(len(h.versions))
}

func (h *history) at(version uint64) (snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if version == 0 || version > uint64(len(h.versions)) {
		return nil, false
	}

	return h.versions[version-1], true
}

func (h *history) commit(mutate func(next snapshot) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := maps.Clone(h.versions[len(h.versions)-1])
	if err := mutate(next); err != nil {
		return err
	}

	h.versions = append(h.versions, next)

	return nil
}

type descriptor struct {
	name     string
	flags    string
	position int64
}

// Call is one recorded invocation of a MemDrive operation.
type Call struct {
	Op   string
	Args []any
}

// Option configures a MemDrive.
type Option func(*MemDrive)

// WithSyncCompletion makes callbacks run before the operation returns instead of on a new goroutine.
func WithSyncCompletion() Option {
	return func(d *MemDrive) {
		d.sync = true
	}
}

// WithHeldDownloads keeps downloads running until CompleteDownloads or their Cancel is called.
func WithHeldDownloads() Option {
	return func(d *MemDrive) {
		d.holdDownloads = true
	}
}

// WithKey sets the drive key instead of a random one.
func WithKey(key []byte) Option {
	return func(d *MemDrive) {
		d.key = append([]byte(nil), key...)
	}
}

// MemDrive is an in-memory drive.Drive for tests.
//
// It keeps every version of its file tree, so Checkout and CreateDiffStream work,
// and completes callbacks asynchronously unless WithSyncCompletion is given.
type MemDrive struct {
	Emitter

	key           []byte
	discoveryKey  []byte
	hist          *history
	pinned        uint64
	sync          bool
	holdDownloads bool

	mu         sync.Mutex
	closed     bool
	nextFD     int
	fds        map[int]*descriptor
	failures   map[string]error
	calls      []Call
	watchers   map[int]watcher
	nextWatch  int
	extensions []string
	held       []*download
}

type watcher struct {
	prefix   string
	onChange func()
}

// NewMemDrive creates an empty, writable in-memory drive.
func NewMemDrive(opts ...Option) *MemDrive {
	key := uuid.New()
	d := &MemDrive{
		key: key[:],
		hist: &history{versions: []snapshot{{
			"/": {stat: drive.Stat{Mode: drive.ModeDirectory | drive.DefaultDirectoryMode}},
		}}},
	}

	for _, opt := range opts {
		opt(d)
	}

	d.init()

	return d
}

func (d *MemDrive) init() {
	discovery := uuid.NewSHA1(uuid.NameSpaceURL, d.key)
	d.discoveryKey = discovery[:]
	d.nextFD = firstFD
	d.fds = make(map[int]*descriptor)
	d.failures = make(map[string]error)
	d.watchers = make(map[int]watcher)
}

// Factory is a drive.Factory for MemDrive. It accepts an optional []byte key and Options.
func Factory(args ...any) (drive.Drive, error) {
	opts := make([]Option, 0, len(args))

	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
		case []byte:
			opts = append(opts, WithKey(a))
		case Option:
			opts = append(opts, a)
		default:
			return nil, ErrUnsupportedArgument
		}
	}

	return NewMemDrive(opts...), nil
}

// FailNext makes the next call of op (e.g. "ReadFile") complete with err.
func (d *MemDrive) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.failures[op] = err
}

// Calls returns all recorded operation calls in order.
func (d *MemDrive) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]Call(nil), d.calls...)
}

// Extensions returns the names of all extension messages sent.
func (d *MemDrive) Extensions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.extensions...)
}

// record notes the call and returns an injected failure for op, if any.
func (d *MemDrive) record(op string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, Call{Op: op, Args: args})

	if err, ok := d.failures[op]; ok {
		delete(d.failures, op)
		return err
	}

	if d.closed {
		return drive.ErrClosed
	}

	return nil
}

func (d *MemDrive) complete(fn func()) {
	if d.sync {
		fn()
		return
	}

	go fn()
}

func (d *MemDrive) view() snapshot {
	if d.pinned > 0 {
		s, _ := d.hist.at(d.pinned)
		return s
	}

	s, _ := d.hist.latest()

	return s
}

func (d *MemDrive) mutate(op, name string, fn func(next snapshot) error) error {
	if !d.Writable() {
		return drive.NewPathError("EPERM", op, name)
	}

	if err := d.hist.commit(fn); err != nil {
		return err
	}

	d.notify(name)
	d.Emit(drive.EventUpdate)

	return nil
}

func (d *MemDrive) notify(name string) {
	d.mu.Lock()
	watchers := slices.Collect(maps.Values(d.watchers))
	d.mu.Unlock()

	for _, w := range watchers {
		if strings.HasPrefix(name, w.prefix) {
			w.onChange()
		}
	}
}

func clean(name string) string {
	return path.Clean("/" + name)
}

func isDir(s snapshot, name string) bool {
	if e, ok := s[name]; ok {
		return e.stat.IsDirectory()
	}

	prefix := strings.TrimSuffix(name, "/") + "/"
	for k := range s {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}

	return false
}

func lookup(s snapshot, name string, follow bool) (entry, bool) {
	for range 8 {
		e, ok := s[name]
		if !ok {
			if isDir(s, name) {
				return entry{stat: drive.Stat{Mode: drive.ModeDirectory | drive.DefaultDirectoryMode}}, true
			}
			return entry{}, false
		}

		if !follow || !e.stat.IsSymlink() {
			return e, true
		}

		name = clean(e.stat.LinkName)
	}

	return entry{}, false
}

// Key implements drive.Drive.
func (d *MemDrive) Key() []byte {
	return d.key
}

// DiscoveryKey implements drive.Drive.
func (d *MemDrive) DiscoveryKey() []byte {
	return d.discoveryKey
}

// Version implements drive.Drive.
func (d *MemDrive) Version() uint64 {
	if d.pinned > 0 {
		return d.pinned
	}

	_, v := d.hist.latest()

	return v
}

// Writable implements drive.Drive. Checkouts are read-only.
func (d *MemDrive) Writable() bool {
	return d.pinned == 0
}

// Ready implements drive.Drive.
func (d *MemDrive) Ready(cb drive.ErrorCallback) {
	err := d.record("Ready")
	d.complete(func() {
		if err == nil {
			d.Emit(drive.EventReady)
		}
		cb(err)
	})
}

// ReadFile implements drive.Drive.
func (d *MemDrive) ReadFile(name string, opts *drive.ReadOptions, cb drive.Callback[[]byte]) {
	if err := d.record("ReadFile", name, opts); err != nil {
		d.complete(func() { cb(err, nil) })
		return
	}

	name = clean(name)
	e, ok := lookup(d.view(), name, true)

	d.complete(func() {
		switch {
		case !ok:
			cb(drive.NewPathError("ENOENT", "readFile", name), nil)
		case e.stat.IsDirectory():
			cb(drive.NewPathError("EISDIR", "readFile", name), nil)
		default:
			cb(nil, bytes.Clone(e.data))
		}
	})
}

// WriteFile implements drive.Drive.
func (d *MemDrive) WriteFile(name string, data []byte, opts *drive.WriteOptions, cb drive.ErrorCallback) {
	err := d.record("WriteFile", name, data, opts)
	if err == nil {
		err = d.writeFile(clean(name), data, opts)
	}

	d.complete(func() { cb(err) })
}

func (d *MemDrive) writeFile(name string, data []byte, opts *drive.WriteOptions) error {
	stat := drive.Stat{
		Mode:  drive.ModeRegular | drive.DefaultFileMode,
		Size:  int64(len(data)),
		Mtime: time.Now(),
		Ctime: time.Now(),
	}

	if opts != nil {
		if opts.Mode != 0 {
			stat.Mode = drive.ModeRegular | opts.Mode
		}
		stat.UID = opts.UID
		stat.GID = opts.GID
		stat.Metadata = maps.Clone(opts.Metadata)
	}

	stat.Blocks = blocks(stat.Size)

	return d.mutate("writeFile", name, func(next snapshot) error {
		next[name] = entry{stat: stat, data: bytes.Clone(data)}
		return nil
	})
}

func blocks(size int64) int64 {
	return (size + blockSize - 1) / blockSize
}

// Unlink implements drive.Drive.
func (d *MemDrive) Unlink(name string, cb drive.ErrorCallback) {
	err := d.record("Unlink", name)
	if err == nil {
		name = clean(name)
		err = d.mutate("unlink", name, func(next snapshot) error {
			e, ok := next[name]
			if !ok || e.stat.IsDirectory() {
				return drive.NewPathError("ENOENT", "unlink", name)
			}
			delete(next, name)
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

// Mkdir implements drive.Drive.
func (d *MemDrive) Mkdir(name string, opts *drive.MkdirOptions, cb drive.ErrorCallback) {
	err := d.record("Mkdir", name, opts)
	if err == nil {
		name = clean(name)
		mode := drive.DefaultDirectoryMode
		if opts != nil && opts.Mode != 0 {
			mode = opts.Mode
		}

		err = d.mutate("mkdir", name, func(next snapshot) error {
			if _, ok := lookup(next, name, false); ok {
				return drive.NewPathError("EEXIST", "mkdir", name)
			}
			next[name] = entry{stat: drive.Stat{Mode: drive.ModeDirectory | mode, Mtime: time.Now(), Ctime: time.Now()}}
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

// Rmdir implements drive.Drive.
func (d *MemDrive) Rmdir(name string, cb drive.ErrorCallback) {
	err := d.record("Rmdir", name)
	if err == nil {
		name = clean(name)
		err = d.mutate("rmdir", name, func(next snapshot) error {
			e, ok := lookup(next, name, false)
			switch {
			case !ok:
				return drive.NewPathError("ENOENT", "rmdir", name)
			case !e.stat.IsDirectory():
				return drive.NewPathError("ENOTDIR", "rmdir", name)
			case len(children(next, name, false)) > 0:
				return drive.NewPathError("ENOTEMPTY", "rmdir", name)
			}
			delete(next, name)
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

func children(s snapshot, dir string, recursive bool) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	seen := make(map[string]struct{})

	for k := range s {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || rest == "" {
			continue
		}

		if !recursive {
			rest, _, _ = strings.Cut(rest, "/")
		}
		seen[rest] = struct{}{}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Readdir implements drive.Drive.
func (d *MemDrive) Readdir(name string, opts *drive.ReaddirOptions, cb drive.Callback[[]string]) {
	if err := d.record("Readdir", name, opts); err != nil {
		d.complete(func() { cb(err, nil) })
		return
	}

	name = clean(name)
	s := d.view()
	e, ok := lookup(s, name, true)

	d.complete(func() {
		switch {
		case !ok:
			cb(drive.NewPathError("ENOENT", "readdir", name), nil)
		case !e.stat.IsDirectory():
			cb(drive.NewPathError("ENOTDIR", "readdir", name), nil)
		default:
			cb(nil, children(s, name, opts != nil && opts.Recursive))
		}
	})
}

// Stat implements drive.Drive.
func (d *MemDrive) Stat(name string, opts *drive.StatOptions, cb drive.Callback[*drive.Stat]) {
	d.stat("Stat", name, opts, true, cb)
}

// Lstat implements drive.Drive.
func (d *MemDrive) Lstat(name string, opts *drive.StatOptions, cb drive.Callback[*drive.Stat]) {
	d.stat("Lstat", name, opts, false, cb)
}

func (d *MemDrive) stat(op, name string, opts *drive.StatOptions, follow bool, cb drive.Callback[*drive.Stat]) {
	if err := d.record(op, name, opts); err != nil {
		d.complete(func() { cb(err, nil) })
		return
	}

	name = clean(name)
	e, ok := lookup(d.view(), name, follow)

	d.complete(func() {
		if !ok {
			cb(drive.NewPathError("ENOENT", strings.ToLower(op), name), nil)
			return
		}
		st := e.stat
		cb(nil, &st)
	})
}

// Access implements drive.Drive.
func (d *MemDrive) Access(name string, cb drive.ErrorCallback) {
	err := d.record("Access", name)
	if err == nil {
		name = clean(name)
		if _, ok := lookup(d.view(), name, true); !ok {
			err = drive.NewPathError("ENOENT", "access", name)
		}
	}

	d.complete(func() { cb(err) })
}

// Open implements drive.Drive. Flags starting with "w" create or truncate the file.
func (d *MemDrive) Open(name string, flags string, cb drive.Callback[int]) {
	err := d.record("Open", name, flags)
	name = clean(name)

	if err == nil {
		if strings.HasPrefix(flags, "w") {
			err = d.writeFile(name, nil, nil)
		} else if e, ok := lookup(d.view(), name, true); !ok || e.stat.IsDirectory() {
			if strings.HasPrefix(flags, "a") && !ok {
				err = d.writeFile(name, nil, nil)
			} else {
				err = drive.NewPathError("ENOENT", "open", name)
			}
		}
	}

	if err != nil {
		d.complete(func() { cb(err, 0) })
		return
	}

	d.mu.Lock()
	fd := d.nextFD
	d.nextFD++
	d.fds[fd] = &descriptor{name: name, flags: flags}
	d.mu.Unlock()

	d.complete(func() { cb(nil, fd) })
}

func (d *MemDrive) descriptor(fd int) (*descriptor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, ok := d.fds[fd]

	return desc, ok
}

// Read implements drive.Drive.
func (d *MemDrive) Read(fd int, buf []byte, offset, length int, position int64, cb drive.Callback[int]) {
	if err := d.record("Read", fd, buf, offset, length, position); err != nil {
		d.complete(func() { cb(err, 0) })
		return
	}

	desc, ok := d.descriptor(fd)
	if !ok {
		d.complete(func() { cb(drive.NewPathError("EBADF", "read", ""), 0) })
		return
	}

	e, _ := lookup(d.view(), desc.name, true)

	d.mu.Lock()
	pos := position
	if pos == drive.CurrentPosition {
		pos = desc.position
	}

	n := 0
	if offset < len(buf) && pos < int64(len(e.data)) {
		end := min(offset+length, len(buf))
		n = copy(buf[offset:end], e.data[pos:])
	}

	if position == drive.CurrentPosition {
		desc.position += int64(n)
	}
	d.mu.Unlock()

	d.complete(func() { cb(nil, n) })
}

// Write implements drive.Drive.
func (d *MemDrive) Write(fd int, buf []byte, offset, length int, position int64, cb drive.Callback2[int, []byte]) {
	if err := d.record("Write", fd, buf, offset, length, position); err != nil {
		d.complete(func() { cb(err, 0, nil) })
		return
	}

	desc, ok := d.descriptor(fd)
	if !ok || strings.HasPrefix(desc.flags, "r") {
		d.complete(func() { cb(drive.NewPathError("EBADF", "write", ""), 0, nil) })
		return
	}

	chunk := buf[min(offset, len(buf)):min(offset+length, len(buf))]

	d.mu.Lock()
	pos := position
	if pos == drive.CurrentPosition {
		pos = desc.position
		desc.position += int64(len(chunk))
	}
	d.mu.Unlock()

	e, _ := lookup(d.view(), desc.name, true)
	data := bytes.Clone(e.data)
	if grow := int(pos) + len(chunk) - len(data); grow > 0 {
		data = append(data, make([]byte, grow)...)
	}
	copy(data[pos:], chunk)

	err := d.writeFile(desc.name, data, &drive.WriteOptions{Mode: e.stat.Mode &^ drive.ModeType, Metadata: e.stat.Metadata})
	if err != nil {
		d.complete(func() { cb(err, 0, nil) })
		return
	}

	d.complete(func() { cb(nil, len(chunk), buf) })
}

// Symlink implements drive.Drive.
func (d *MemDrive) Symlink(target, linkName string, cb drive.ErrorCallback) {
	err := d.record("Symlink", target, linkName)
	if err == nil {
		linkName = clean(linkName)
		err = d.mutate("symlink", linkName, func(next snapshot) error {
			if _, ok := next[linkName]; ok {
				return drive.NewPathError("EEXIST", "symlink", linkName)
			}
			next[linkName] = entry{stat: drive.Stat{Mode: drive.ModeSymlink | 0o777, LinkName: target, Mtime: time.Now()}}
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

// Mount implements drive.Drive.
func (d *MemDrive) Mount(p string, key []byte, opts *drive.MountOptions, cb drive.ErrorCallback) {
	err := d.record("Mount", p, key, opts)
	if err == nil {
		p = clean(p)
		info := &drive.MountInfo{Key: bytes.Clone(key)}
		if opts != nil {
			info.Version = opts.Version
			info.Hash = bytes.Clone(opts.Hash)
		}

		err = d.mutate("mount", p, func(next snapshot) error {
			next[p] = entry{stat: drive.Stat{Mode: drive.ModeDirectory | drive.DefaultDirectoryMode, Mount: info, Mtime: time.Now()}}
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

// Unmount implements drive.Drive.
func (d *MemDrive) Unmount(p string, cb drive.ErrorCallback) {
	err := d.record("Unmount", p)
	if err == nil {
		p = clean(p)
		err = d.mutate("unmount", p, func(next snapshot) error {
			if e, ok := next[p]; !ok || e.stat.Mount == nil {
				return drive.NewPathError("ENOENT", "unmount", p)
			}
			delete(next, p)
			return nil
		})
	}

	d.complete(func() { cb(err) })
}

// GetAllMounts implements drive.Drive. The root mount is always included.
func (d *MemDrive) GetAllMounts(opts *drive.MountsOptions, cb drive.Callback[map[string]*drive.MountInfo]) {
	if err := d.record("GetAllMounts", opts); err != nil {
		d.complete(func() { cb(err, nil) })
		return
	}

	mounts := map[string]*drive.MountInfo{
		"/": {Key: d.key, Version: d.Version()},
	}
	for name, e := range d.view() {
		if e.stat.Mount != nil {
			mounts[name] = e.stat.Mount
		}
	}

	d.complete(func() { cb(nil, mounts) })
}

// Close implements drive.Drive and emits the close event.
func (d *MemDrive) Close(cb drive.ErrorCallback) {
	err := d.record("Close")
	if err == nil {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
	}

	d.complete(func() {
		if err == nil {
			d.Emit(drive.EventClose)
		}
		cb(err)
	})
}

// CloseFD implements drive.Drive.
func (d *MemDrive) CloseFD(fd int, cb drive.ErrorCallback) {
	err := d.record("CloseFD", fd)
	if err == nil {
		d.mu.Lock()
		if _, ok := d.fds[fd]; ok {
			delete(d.fds, fd)
		} else {
			err = drive.NewPathError("EBADF", "close", "")
		}
		d.mu.Unlock()
	}

	d.complete(func() { cb(err) })
}

// FileStats implements drive.Drive. All blocks of an in-memory drive are local.
func (d *MemDrive) FileStats(name string, cb drive.Callback[*drive.FileStats]) {
	if err := d.record("FileStats", name); err != nil {
		d.complete(func() { cb(err, nil) })
		return
	}

	name = clean(name)
	e, ok := lookup(d.view(), name, true)

	d.complete(func() {
		if !ok {
			cb(drive.NewPathError("ENOENT", "fileStats", name), nil)
			return
		}
		cb(nil, &drive.FileStats{Blocks: e.stat.Blocks, DownloadedBlocks: e.stat.Blocks, DownloadedBytes: e.stat.Size})
	})
}

// Truncate implements drive.Drive.
func (d *MemDrive) Truncate(name string, size int64, cb drive.ErrorCallback) {
	err := d.record("Truncate", name, size)
	if err == nil {
		name = clean(name)
		e, ok := lookup(d.view(), name, true)
		if !ok || e.stat.IsDirectory() {
			err = drive.NewPathError("ENOENT", "truncate", name)
		} else {
			data := bytes.Clone(e.data)
			if int64(len(data)) > size {
				data = data[:size]
			} else {
				data = append(data, make([]byte, size-int64(len(data)))...)
			}
			err = d.writeFile(name, data, &drive.WriteOptions{Mode: e.stat.Mode &^ drive.ModeType, Metadata: e.stat.Metadata})
		}
	}

	d.complete(func() { cb(err) })
}

// Download implements drive.Drive. It completes with the total and, if requested, per-file statistics.
// With WithHeldDownloads it keeps running until CompleteDownloads or Cancel.
func (d *MemDrive) Download(
	name string,
	opts *drive.DownloadOptions,
	cb drive.Callback2[*drive.DownloadStats, map[string]*drive.DownloadStats],
) drive.DownloadHandle {
	h := &download{complete: d.complete, cb: cb}

	if err := d.record("Download", name, opts); err != nil {
		h.fail(err)
		return h
	}

	name = clean(name)
	h.total = &drive.DownloadStats{}
	h.byFile = make(map[string]*drive.DownloadStats)

	for k, e := range d.view() {
		if !e.stat.IsFile() || (k != name && !strings.HasPrefix(k, strings.TrimSuffix(name, "/")+"/")) {
			continue
		}

		stats := &drive.DownloadStats{Blocks: e.stat.Blocks, DownloadedBlocks: e.stat.Blocks, DownloadedBytes: e.stat.Size}
		h.total.Blocks += stats.Blocks
		h.total.DownloadedBlocks += stats.DownloadedBlocks
		h.total.DownloadedBytes += stats.DownloadedBytes

		if opts != nil && opts.Detailed {
			h.byFile[k] = stats
		}
	}

	if d.holdDownloads {
		d.mu.Lock()
		d.held = append(d.held, h)
		d.mu.Unlock()
		return h
	}

	h.finish()

	return h
}

// CompleteDownloads finishes all downloads held by WithHeldDownloads.
func (d *MemDrive) CompleteDownloads() {
	d.mu.Lock()
	held := d.held
	d.held = nil
	d.mu.Unlock()

	for _, h := range held {
		h.finish()
	}
}

// Checkout implements drive.Drive. The returned drive is a read-only view at version.
func (d *MemDrive) Checkout(version uint64, _ *drive.CheckoutOptions) (drive.Drive, error) {
	if _, ok := d.hist.at(version); !ok {
		return nil, drive.ErrUnknownVersion
	}

	view := &MemDrive{
		key:    d.key,
		hist:   d.hist,
		pinned: version,
		sync:   d.sync,
	}
	view.init()

	return view, nil
}

// CreateDiffStream implements drive.Drive.
func (d *MemDrive) CreateDiffStream(other drive.Drive, prefix string, opts *drive.DiffOptions) (drive.DiffStream, error) {
	from := snapshot{}

	if other != nil {
		peer, ok := other.(*MemDrive)
		if !ok {
			return nil, ErrUnsupportedPeer
		}
		from = peer.view()
	}

	to := d.view()
	if opts != nil && opts.Reverse {
		from, to = to, from
	}

	return newDiffStream(from, to, clean(prefix)), nil
}

// CreateReadStream implements drive.Drive.
func (d *MemDrive) CreateReadStream(name string, opts *drive.ReadStreamOptions) (io.ReadCloser, error) {
	name = clean(name)

	e, ok := lookup(d.view(), name, true)
	if !ok || e.stat.IsDirectory() {
		return nil, drive.NewPathError("ENOENT", "createReadStream", name)
	}

	data := e.data
	if opts != nil {
		start := min(opts.Start, int64(len(data)))
		data = data[start:]
		if opts.Length > 0 && opts.Length < int64(len(data)) {
			data = data[:opts.Length]
		}
	}

	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// CreateWriteStream implements drive.Drive. The content is committed on Close.
func (d *MemDrive) CreateWriteStream(name string, opts *drive.WriteOptions) (io.WriteCloser, error) {
	if !d.Writable() {
		return nil, drive.NewPathError("EPERM", "createWriteStream", name)
	}

	return &writeStream{d: d, name: clean(name), opts: opts}, nil
}

type writeStream struct {
	d    *MemDrive
	name string
	opts *drive.WriteOptions
	buf  bytes.Buffer
}

func (w *writeStream) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writeStream) Close() error {
	return w.d.writeFile(w.name, w.buf.Bytes(), w.opts)
}

// Watch implements drive.Drive.
func (d *MemDrive) Watch(prefix string, onChange func()) (unwatch func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextWatch++
	id := d.nextWatch
	d.watchers[id] = watcher{prefix: clean(prefix), onChange: onChange}

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		delete(d.watchers, id)
	}
}

// Extension implements drive.Drive. Without peers the message is only recorded and emitted locally.
func (d *MemDrive) Extension(name string, message []byte) {
	d.mu.Lock()
	d.extensions = append(d.extensions, name)
	d.mu.Unlock()

	d.Emit(drive.EventExtension, name, message)
}

var _ drive.Drive = (*MemDrive)(nil)
