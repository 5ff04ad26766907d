package promisedrive

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

var (
	// ErrNilDrive is returned when there is no drive instance to wrap.
	ErrNilDrive = errors.New("nil drive supplied")

	// ErrNilFactory is returned when constructor arguments are given without a factory.
	ErrNilFactory = errors.New("nil drive factory supplied")

	// ErrNotADrive is returned when a single argument reads files but is not a complete drive.
	ErrNotADrive = errors.New("argument provides ReadFile but does not implement drive.Drive")

	// ErrCreatingDriveFailed is returned when the factory fails to construct a drive.
	ErrCreatingDriveFailed = errors.New("creating drive failed")

	// ErrUnsupportedPeer is returned when a companion operation gets a peer that is neither
	// an adapted nor a raw drive.
	ErrUnsupportedPeer = errors.New("peer is neither a promisedrive.Drive nor a drive.Drive")
)

// Drive adapts a raw callback-style drive.Drive so that every classified operation can be
// called either with a trailing callback or without one, in which case it returns a Promise.
//
// A Drive owns exactly one raw drive and never hands it out.
// Companion operations that derive new drives return new adapters.
type Drive struct {
	h drive.Drive

	mu    sync.Mutex
	funcs map[string]*Func
}

// Wrap adapts raw.
func Wrap(raw drive.Drive) (*Drive, error) {
	if isNilDrive(raw) {
		return nil, ErrNilDrive
	}

	return &Drive{
		h:     raw,
		funcs: make(map[string]*Func),
	}, nil
}

// isNilDrive also catches a nil pointer stored in the interface.
func isNilDrive(raw drive.Drive) bool {
	if raw == nil {
		return true
	}

	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Create constructs a raw drive with factory and adapts it.
func Create(factory drive.Factory, args ...any) (*Drive, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	raw, err := factory(args...)
	if err != nil {
		return nil, errors.Join(ErrCreatingDriveFailed, err)
	}

	return Wrap(raw)
}

// New accepts either the constructor arguments of factory or a single already constructed drive.
//
// A single argument that provides ReadFile is taken as a constructed drive; an adapter given
// this way is returned as is and never wrapped twice. Any other argument list goes to factory.
// Prefer Wrap or Create when the calling convention is under your control.
func New(factory drive.Factory, args ...any) (*Drive, error) {
	if len(args) == 1 {
		switch candidate := args[0].(type) {
		case *Drive:
			if candidate == nil {
				return nil, ErrNilDrive
			}
			return candidate, nil

		case drive.FileReader:
			raw, ok := candidate.(drive.Drive)
			if !ok {
				return nil, ErrNotADrive
			}
			return Wrap(raw)
		}
	}

	return Create(factory, args...)
}

// unwrap resolves a peer to the raw drive companion operations delegate to.
func unwrap(peer drive.Peer) (drive.Drive, error) {
	switch p := peer.(type) {
	case nil:
		return nil, nil
	case *Drive:
		if p == nil {
			return nil, nil
		}
		return p.h, nil
	case drive.Drive:
		return p, nil
	default:
		return nil, ErrUnsupportedPeer
	}
}

// Key returns the public key of the drive.
func (d *Drive) Key() []byte {
	return d.h.Key()
}

// DiscoveryKey returns the discovery key of the drive.
func (d *Drive) DiscoveryKey() []byte {
	return d.h.DiscoveryKey()
}

// Version returns the current version, re-read from the drive on every call.
func (d *Drive) Version() uint64 {
	return d.h.Version()
}

// Writable reports whether the drive accepts mutations.
func (d *Drive) Writable() bool {
	return d.h.Writable()
}

// On subscribes listener to event on the wrapped drive.
func (d *Drive) On(event string, listener drive.Listener) (unsubscribe func()) {
	return d.h.On(event, listener)
}

// Emit emits event on the wrapped drive.
func (d *Drive) Emit(event string, args ...any) {
	d.h.Emit(event, args...)
}

// CreateReadStream opens a reader over name on the wrapped drive.
func (d *Drive) CreateReadStream(name string, opts *drive.ReadStreamOptions) (io.ReadCloser, error) {
	return d.h.CreateReadStream(name, opts)
}

// CreateWriteStream opens a writer for name on the wrapped drive; the file is written on Close.
func (d *Drive) CreateWriteStream(name string, opts *drive.WriteOptions) (io.WriteCloser, error) {
	return d.h.CreateWriteStream(name, opts)
}

// Watch calls onChange after every change below prefix until unwatch is called.
func (d *Drive) Watch(prefix string, onChange func()) (unwatch func()) {
	return d.h.Watch(prefix, onChange)
}

// Extension broadcasts an extension message to all peers.
func (d *Drive) Extension(name string, message []byte) {
	d.h.Extension(name, message)
}
