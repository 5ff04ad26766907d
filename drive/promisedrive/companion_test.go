package promisedrive_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/promisedrive"
)

// foreignPeer has the property surface of a drive but is neither a raw nor an adapted drive.
type foreignPeer struct{}

func (foreignPeer) Key() []byte     { return nil }
func (foreignPeer) Version() uint64 { return 0 }

func collectDiff(t *testing.T, stream drive.DiffStream) []drive.DiffEntry {
	t.Helper()

	var entries []drive.DiffEntry
	for {
		entry, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	require.NoError(t, stream.Close())

	return entries
}

func Test_Checkout_ReturnsAnAdaptedDriveAtThatVersion(t *testing.T) {
	// arrange
	ctx := testContext(t)
	d, _ := givenAdaptedDrive(t)
	givenFile(t, d, "/a", "first")
	version := d.Version()
	givenFile(t, d, "/a", "second")

	// act
	old, err := d.Checkout(version, nil)
	require.NoError(t, err)

	data, readErr := old.ReadFile("/a", nil).Await(ctx)

	// assert
	assert.NoError(t, readErr)
	assert.Equal(t, []byte("first"), data)
	assert.Equal(t, version, old.Version())
	assert.False(t, old.Writable())
}

func Test_Checkout_IsRecursive(t *testing.T) {
	// arrange
	ctx := testContext(t)
	d, _ := givenAdaptedDrive(t)
	givenFile(t, d, "/a", "a")
	givenFile(t, d, "/b", "b")

	// act
	first, err := d.Checkout(3, nil)
	require.NoError(t, err)
	second, err := first.Checkout(2, nil)
	require.NoError(t, err)

	_, missingErr := second.ReadFile("/b", nil).Await(ctx)
	_, writeErr := second.WriteFile("/c", []byte("c"), nil).Await(ctx)

	// assert
	assert.ErrorIs(t, missingErr, drive.ErrNotFound)
	assert.ErrorIs(t, writeErr, drive.ErrNotWritable)
	assert.Equal(t, uint64(2), second.Version())
}

func Test_Checkout_ShouldFail_WithUnknownVersion(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)

	// act
	checkedOut, err := d.Checkout(99, nil)

	// assert
	assert.Nil(t, checkedOut)
	assert.ErrorIs(t, err, drive.ErrUnknownVersion)
}

func Test_CreateDiffStream_AcceptsAdaptedAndRawPeers(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)
	givenFile(t, d, "/a", "a")
	old, err := d.Checkout(d.Version(), nil)
	require.NoError(t, err)
	givenFile(t, d, "/b", "b")

	rawOld, err := raw.Checkout(old.Version(), nil)
	require.NoError(t, err)

	expected := []drive.DiffEntry{{Type: drive.DiffPut, Name: "/b"}}

	testCases := []struct {
		name string
		peer drive.Peer
	}{
		{name: "adapted_peer", peer: old},
		{name: "raw_peer", peer: rawOld},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			stream, diffErr := d.CreateDiffStream(tc.peer, "/", nil)
			require.NoError(t, diffErr)
			entries := collectDiff(t, stream)

			// assert
			require.Len(t, entries, len(expected))
			assert.Equal(t, expected[0].Type, entries[0].Type)
			assert.Equal(t, expected[0].Name, entries[0].Name)
		})
	}
}

func Test_CreateDiffStream_WithoutPeer_DiffsAgainstTheEmptyDrive(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)
	givenFile(t, d, "/docs/a", "a")
	givenFile(t, d, "/other", "x")

	// act
	stream, err := d.CreateDiffStream(nil, "/docs", nil)
	require.NoError(t, err)
	entries := collectDiff(t, stream)

	// assert
	require.Len(t, entries, 1)
	assert.Equal(t, "/docs/a", entries[0].Name)
}

func Test_CreateDiffStream_ShouldFail_WithForeignPeer(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)

	// act
	stream, err := d.CreateDiffStream(foreignPeer{}, "/", nil)

	// assert
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, promisedrive.ErrUnsupportedPeer)
}

func Test_CreateDiffStream_ReportsMounts(t *testing.T) {
	// arrange
	ctx := testContext(t)
	d, _ := givenAdaptedDrive(t)
	before, err := d.Checkout(d.Version(), nil)
	require.NoError(t, err)

	_, err = d.Mount("/shared", []byte("other-key"), nil).Await(ctx)
	require.NoError(t, err)

	// act
	stream, err := d.CreateDiffStream(before, "/", nil)
	require.NoError(t, err)
	entries := collectDiff(t, stream)

	mounts, mountsErr := d.GetAllMounts(nil).Await(ctx)

	// assert
	require.Len(t, entries, 1)
	assert.Equal(t, drive.DiffMount, entries[0].Type)
	assert.NoError(t, mountsErr)
	assert.Contains(t, mounts, "/")
	assert.Equal(t, []byte("other-key"), mounts["/shared"].Key)
}
