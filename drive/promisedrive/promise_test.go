package promisedrive_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/promisedrive"
	"github.com/AntonStoeckl/hyperdrive-promise-go/testutil/drivetest"
)

// stalledDrive never completes Ready.
type stalledDrive struct {
	*drivetest.MemDrive
}

func (stalledDrive) Ready(drive.ErrorCallback) {}

func Test_Promise_Await_ReturnsContextError_WhenAbandoned(t *testing.T) {
	// arrange
	d, err := promisedrive.Wrap(stalledDrive{MemDrive: drivetest.NewMemDrive()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := d.Ready()

	// act
	_, awaitErr := p.Await(ctx)

	// assert
	assert.ErrorIs(t, awaitErr, context.DeadlineExceeded)

	select {
	case <-p.Done():
		t.Fatal("promise must stay pending")
	default:
	}
}

func Test_Promise_Await_PrefersASettledResult_OverACancelledContext(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t, drivetest.WithSyncCompletion())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := d.Mkdir("/dir", nil).Await(ctx)

	// assert
	assert.NoError(t, err)
}

func Test_Promise_Then_ReceivesTheOutcome(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)
	raw.FailNext("Access", drive.ErrClosed)
	outcome := make(chan error, 1)

	// act
	d.Access("/anything").Then(func(_ promisedrive.None, err error) {
		outcome <- err
	})

	// assert
	select {
	case err := <-outcome:
		assert.ErrorIs(t, err, drive.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Then callback was not called")
	}
}

func Test_Promise_Wait_ReturnsTheSameOutcomeRepeatedly(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)
	givenFile(t, d, "/a", "a")
	p := d.ReadFile("/a", nil)

	// act
	first, firstErr := p.Wait()
	second, secondErr := p.Wait()

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
	assert.Equal(t, first, second)
}

func Test_Promise_Reject_KeepsTheExactError(t *testing.T) {
	// arrange
	d, raw := givenAdaptedDrive(t)
	failure := errors.New("disk gone")
	raw.FailNext("Access", failure)

	// act
	_, err := d.Access("/anything").Wait()

	// assert
	assert.Equal(t, failure, err)
}

func Test_Promise_ConcurrentWaiters_SeeTheSameOutcome(t *testing.T) {
	// arrange
	d, _ := givenAdaptedDrive(t)
	givenFile(t, d, "/a", "a")
	p := d.ReadFile("/a", nil)

	const waiters = 8
	results := make(chan []byte, waiters)

	// act
	var wg sync.WaitGroup
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := p.Wait()
			assert.NoError(t, err)
			results <- content
		}()
	}
	wg.Wait()
	close(results)

	// assert
	for content := range results {
		assert.Equal(t, []byte("a"), content)
	}
}
