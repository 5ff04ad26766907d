package promisedrive_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/promisedrive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/testutil/drivetest"
)

// readerOnly provides ReadFile but none of the other drive operations.
type readerOnly struct{}

func (readerOnly) ReadFile(_ string, _ *drive.ReadOptions, cb drive.Callback[[]byte]) {
	cb(nil, nil)
}

func Test_Wrap_ShouldFail_WithNilDrive(t *testing.T) {
	// act
	d, err := promisedrive.Wrap(nil)

	// assert
	assert.Nil(t, d)
	assert.ErrorIs(t, err, promisedrive.ErrNilDrive)
}

func Test_NilPointerDrives_AreRejected(t *testing.T) {
	var nilDrive *drivetest.MemDrive

	testCases := []struct {
		name      string
		construct func() (*promisedrive.Drive, error)
	}{
		{
			name:      "wrap",
			construct: func() (*promisedrive.Drive, error) { return promisedrive.Wrap(nilDrive) },
		},
		{
			name:      "new_with_single_instance",
			construct: func() (*promisedrive.Drive, error) { return promisedrive.New(drivetest.Factory, nilDrive) },
		},
		{
			name: "create_with_factory_returning_nil_pointer",
			construct: func() (*promisedrive.Drive, error) {
				return promisedrive.Create(func(...any) (drive.Drive, error) { return nilDrive, nil })
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			d, err := tc.construct()

			// assert
			assert.Nil(t, d)
			assert.ErrorIs(t, err, promisedrive.ErrNilDrive)
		})
	}
}

func Test_Create_ShouldFail_WithNilFactory(t *testing.T) {
	// act
	_, err := promisedrive.Create(nil, []byte("key"))

	// assert
	assert.ErrorIs(t, err, promisedrive.ErrNilFactory)
}

func Test_Create_ShouldJoinFactoryErrors(t *testing.T) {
	// arrange
	factoryErr := errors.New("storage unavailable")
	failing := func(...any) (drive.Drive, error) { return nil, factoryErr }

	// act
	_, err := promisedrive.Create(failing)

	// assert
	assert.ErrorIs(t, err, promisedrive.ErrCreatingDriveFailed)
	assert.ErrorIs(t, err, factoryErr)
}

func Test_New_DistinguishesDrivesFromConstructorArguments(t *testing.T) {
	existing := drivetest.NewMemDrive()
	adapted, err := promisedrive.Wrap(existing)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		args      []any
		expectKey []byte
		expectErr error
		same      *promisedrive.Drive
	}{
		{
			name:      "single_constructed_drive_is_wrapped",
			args:      []any{existing},
			expectKey: existing.Key(),
		},
		{
			name: "adapted_drive_is_returned_as_is",
			args: []any{adapted},
			same: adapted,
		},
		{
			name:      "single_key_goes_to_the_factory",
			args:      []any{[]byte("0123456789abcdef")},
			expectKey: []byte("0123456789abcdef"),
		},
		{
			name:      "multiple_arguments_go_to_the_factory",
			args:      []any{[]byte("0123456789abcdef"), drivetest.WithSyncCompletion()},
			expectKey: []byte("0123456789abcdef"),
		},
		{
			name:      "partial_drive_is_rejected",
			args:      []any{readerOnly{}},
			expectErr: promisedrive.ErrNotADrive,
		},
		{
			name:      "unsupported_argument_fails_in_the_factory",
			args:      []any{42},
			expectErr: drivetest.ErrUnsupportedArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			d, newErr := promisedrive.New(drivetest.Factory, tc.args...)

			// assert
			if tc.expectErr != nil {
				assert.ErrorIs(t, newErr, tc.expectErr)
				return
			}

			require.NoError(t, newErr)

			if tc.same != nil {
				assert.Same(t, tc.same, d)
				return
			}

			assert.Equal(t, tc.expectKey, d.Key())
		})
	}
}

func Test_Properties_AreReadLive(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)
	before := d.Version()

	// act
	givenFile(t, d, "/a", "a")
	givenFile(t, d, "/b", "b")

	// assert
	assert.Equal(t, before+2, d.Version())
	assert.Equal(t, raw.Version(), d.Version())
	assert.Equal(t, raw.Key(), d.Key())
	assert.Equal(t, raw.DiscoveryKey(), d.DiscoveryKey())
	assert.True(t, d.Writable())
}

func Test_Events_ArePassedThroughToTheRawDrive(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)
	var received []any

	// act
	unsubscribe := d.On(drive.EventExtension, func(args ...any) { received = args })
	raw.Emit(drive.EventExtension, "chat", []byte("hi"))

	// assert
	assert.Equal(t, []any{"chat", []byte("hi")}, received)
	assert.Equal(t, 1, raw.ListenerCount(drive.EventExtension))

	unsubscribe()
	assert.Equal(t, 0, raw.ListenerCount(drive.EventExtension))
}

func Test_Ready_EmitsTheReadyEvent(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)
	ready := make(chan struct{}, 1)
	d.On(drive.EventReady, func(...any) { ready <- struct{}{} })

	// act
	_, err := d.Ready().Await(testContext(t))

	// assert
	assert.NoError(t, err)
	assert.Len(t, ready, 1)
}

func Test_Streams_ArePassedThrough(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)

	w, err := d.CreateWriteStream("/stream.txt", nil)
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// act
	r, err := d.CreateReadStream("/stream.txt", &drive.ReadStreamOptions{Start: 9})
	require.NoError(t, err)
	content, readErr := io.ReadAll(r)

	// assert
	assert.NoError(t, readErr)
	assert.Equal(t, "content", string(content))
}

func Test_Watch_NotifiesUntilUnwatched(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)
	changes := 0
	unwatch := d.Watch("/docs", func() { changes++ })

	// act
	givenFile(t, d, "/docs/a", "a")
	givenFile(t, d, "/other", "x")
	unwatch()
	givenFile(t, d, "/docs/b", "b")

	// assert
	assert.Equal(t, 1, changes)
}

func Test_Extension_IsForwarded(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)

	// act
	d.Extension("chat", []byte("hello"))

	// assert
	assert.Equal(t, []string{"chat"}, raw.Extensions())
}
