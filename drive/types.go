package drive

import (
	"time"
)

// Mode bits of Stat.Mode.
const (
	ModeType      uint32 = 0o170000
	ModeDirectory uint32 = 0o040000
	ModeRegular   uint32 = 0o100000
	ModeSymlink   uint32 = 0o120000

	DefaultFileMode      uint32 = 0o666
	DefaultDirectoryMode uint32 = 0o755
)

// Stat describes a file, directory, symlink, or mount point.
type Stat struct {
	Mode       uint32
	UID        int
	GID        int
	Size       int64
	Blocks     int64
	Offset     int64
	ByteOffset int64
	Mtime      time.Time
	Ctime      time.Time
	LinkName   string
	Mount      *MountInfo
	Metadata   map[string][]byte
}

// IsFile reports whether the entry is a regular file.
func (s *Stat) IsFile() bool {
	return s.Mode&ModeType == ModeRegular
}

// IsDirectory reports whether the entry is a directory.
func (s *Stat) IsDirectory() bool {
	return s.Mode&ModeType == ModeDirectory
}

// IsSymlink reports whether the entry is a symbolic link.
func (s *Stat) IsSymlink() bool {
	return s.Mode&ModeType == ModeSymlink
}

// MountInfo describes another drive mounted into this one.
type MountInfo struct {
	Key     []byte
	Version uint64
	Hash    []byte
}

// FileStats counts the blocks of a file and how many of them are stored locally.
type FileStats struct {
	Blocks           int64
	DownloadedBlocks int64
	DownloadedBytes  int64
}

// DownloadStats is the outcome of a Download for one file or for all of them.
type DownloadStats struct {
	Blocks           int64
	DownloadedBlocks int64
	DownloadedBytes  int64
}

// DiffType classifies a DiffEntry.
type DiffType string

const (
	DiffPut     DiffType = "put"
	DiffDel     DiffType = "del"
	DiffMount   DiffType = "mount"
	DiffUnmount DiffType = "unmount"
)

// DiffEntry is one difference between two drive versions.
type DiffEntry struct {
	Type  DiffType
	Name  string
	Value *Stat
}

// DiffStream yields DiffEntry values until io.EOF.
type DiffStream interface {
	Next() (DiffEntry, error)
	Close() error
}

// ReadOptions configures ReadFile.
type ReadOptions struct {
	// Cached restricts the read to locally stored blocks.
	Cached bool
}

// WriteOptions configures WriteFile and CreateWriteStream.
type WriteOptions struct {
	Mode     uint32
	UID      int
	GID      int
	Metadata map[string][]byte
}

// MkdirOptions configures Mkdir.
type MkdirOptions struct {
	Mode uint32
}

// ReaddirOptions configures Readdir.
type ReaddirOptions struct {
	Recursive bool
	NoMounts  bool
}

// StatOptions configures Stat and Lstat.
type StatOptions struct {
	File bool
}

// MountOptions configures Mount.
type MountOptions struct {
	Version uint64
	Hash    []byte
}

// MountsOptions configures GetAllMounts.
type MountsOptions struct {
	// Memory restricts the result to mounts already loaded in memory.
	Memory bool
}

// DownloadOptions configures Download.
type DownloadOptions struct {
	Detailed bool
}

// CheckoutOptions configures Checkout.
type CheckoutOptions struct {
	Sparse bool
}

// DiffOptions configures CreateDiffStream.
type DiffOptions struct {
	Reverse bool
}

// ReadStreamOptions configures CreateReadStream.
type ReadStreamOptions struct {
	Start  int64
	Length int64
}
