package drivetest

import (
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// download is the drive.DownloadHandle of a MemDrive download.
// Exactly one of finish, Cancel, or fail takes effect.
type download struct {
	Emitter

	once     sync.Once
	complete func(fn func())
	cb       drive.Callback2[*drive.DownloadStats, map[string]*drive.DownloadStats]
	total    *drive.DownloadStats
	byFile   map[string]*drive.DownloadStats
}

func (h *download) finish() {
	h.once.Do(func() {
		h.complete(func() {
			h.Emit(drive.EventFinish, h.total, h.byFile)
			h.cb(nil, h.total, h.byFile)
		})
	})
}

func (h *download) fail(err error) {
	h.once.Do(func() {
		h.complete(func() {
			h.Emit(drive.EventError, err)
			h.cb(err, nil, nil)
		})
	})
}

// Cancel implements drive.DownloadHandle. A held download has fetched nothing yet.
func (h *download) Cancel() {
	h.once.Do(func() {
		total := pending(h.total)
		byFile := make(map[string]*drive.DownloadStats, len(h.byFile))
		for name, stats := range h.byFile {
			byFile[name] = pending(stats)
		}

		h.complete(func() {
			h.Emit(drive.EventCancel, nil, total, byFile)
			h.cb(drive.ErrDownloadCancelled, total, byFile)
		})
	})
}

func pending(stats *drive.DownloadStats) *drive.DownloadStats {
	return &drive.DownloadStats{Blocks: stats.Blocks}
}
