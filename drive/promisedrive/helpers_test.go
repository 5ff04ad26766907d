package promisedrive_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/promisedrive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/testutil/drivetest"
)

func givenAdaptedDrive(t *testing.T, opts ...drivetest.Option) (*promisedrive.Drive, *drivetest.MemDrive) {
	t.Helper()

	raw := drivetest.NewMemDrive(opts...)
	adapted, err := promisedrive.Wrap(raw)
	require.NoError(t, err)

	return adapted, raw
}

func givenFile(t *testing.T, d *promisedrive.Drive, name string, content string) {
	t.Helper()

	_, err := d.WriteFile(name, []byte(content), nil).Await(testContext(t))
	require.NoError(t, err)
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	return ctx
}

// scriptedDrive completes selected operations with fixed values instead of touching the in-memory tree.
type scriptedDrive struct {
	*drivetest.MemDrive

	readN    int
	readErr  error
	stat     *drive.Stat
	statErr  error
	written  int
	writeBuf []byte
	writeErr error
}

func (s *scriptedDrive) Read(_ int, _ []byte, _, _ int, _ int64, cb drive.Callback[int]) {
	go cb(s.readErr, s.readN)
}

func (s *scriptedDrive) Stat(_ string, _ *drive.StatOptions, cb drive.Callback[*drive.Stat]) {
	go cb(s.statErr, s.stat)
}

func (s *scriptedDrive) Write(_ int, _ []byte, _, _ int, _ int64, cb drive.Callback2[int, []byte]) {
	go cb(s.writeErr, s.written, s.writeBuf)
}

// twiceCompletingDrive calls every Ready callback twice, first with success and then with an error.
type twiceCompletingDrive struct {
	*drivetest.MemDrive
}

func (d twiceCompletingDrive) Ready(cb drive.ErrorCallback) {
	cb(nil)
	cb(drive.ErrClosed)
}
