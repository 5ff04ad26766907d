package drivetest

import (
	"bytes"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

type diffStream struct {
	mu      sync.Mutex
	entries []drive.DiffEntry
	closed  bool
}

// newDiffStream lists the changes that turn from into to, limited to names below prefix, sorted by name.
func newDiffStream(from, to snapshot, prefix string) *diffStream {
	names := make(map[string]struct{})
	for k := range from {
		names[k] = struct{}{}
	}
	for k := range to {
		names[k] = struct{}{}
	}

	var entries []drive.DiffEntry

	for _, name := range slices.Sorted(maps.Keys(names)) {
		if !below(name, prefix) {
			continue
		}

		before, hadBefore := from[name]
		after, hasAfter := to[name]

		switch {
		case hasAfter && after.stat.Mount != nil && (!hadBefore || before.stat.Mount == nil):
			entries = append(entries, drive.DiffEntry{Type: drive.DiffMount, Name: name, Value: statOf(after)})
		case hadBefore && before.stat.Mount != nil && (!hasAfter || after.stat.Mount == nil):
			entries = append(entries, drive.DiffEntry{Type: drive.DiffUnmount, Name: name, Value: statOf(before)})
		case hasAfter && (!hadBefore || changed(before, after)):
			entries = append(entries, drive.DiffEntry{Type: drive.DiffPut, Name: name, Value: statOf(after)})
		case hadBefore && !hasAfter:
			entries = append(entries, drive.DiffEntry{Type: drive.DiffDel, Name: name, Value: statOf(before)})
		}
	}

	return &diffStream{entries: entries}
}

func below(name, prefix string) bool {
	if prefix == "/" || name == prefix {
		return true
	}

	return strings.HasPrefix(name, prefix+"/")
}

func changed(before, after entry) bool {
	return before.stat.Mode != after.stat.Mode ||
		before.stat.LinkName != after.stat.LinkName ||
		!bytes.Equal(before.data, after.data)
}

func statOf(e entry) *drive.Stat {
	st := e.stat
	return &st
}

// Next returns the next entry, or io.EOF once all entries were read.
func (s *diffStream) Next() (drive.DiffEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(s.entries) == 0 {
		return drive.DiffEntry{}, io.EOF
	}

	next := s.entries[0]
	s.entries = s.entries[1:]

	return next, nil
}

func (s *diffStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}
