package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/observable"
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/oteladapters"
	"github.com/AntonStoeckl/hyperdrive-promise-go/testutil/drivetest"
)

func Test_NewProviders_ShouldFail_WithoutServiceName(t *testing.T) {
	// act
	providers, err := oteladapters.NewProviders(context.Background(), oteladapters.ProviderConfig{})

	// assert
	assert.Nil(t, providers)
	assert.ErrorIs(t, err, oteladapters.ErrMissingServiceName)
}

func Test_NewProviders_BuildsInstrumentedDriveOptions(t *testing.T) {
	// setup
	providers, err := oteladapters.NewProviders(context.Background(), oteladapters.ProviderConfig{
		ServiceName:    "drive-test",
		ServiceVersion: "test",
		TraceEndpoint:  "localhost:1",
		MetricEndpoint: "localhost:1",
		MetricInterval: time.Hour,
		Insecure:       true,
	})
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_ = providers.Shutdown(ctx) // nothing listens on the endpoint
	}()

	// act
	options := providers.DriveOptions()
	instrumented, wrapErr := observable.Wrap(drivetest.NewMemDrive(), options...)

	// assert
	assert.Len(t, options, 3)
	require.NoError(t, wrapErr)
	assert.NotNil(t, instrumented)

	serviceName, found := providers.Resource.Set().Value(attribute.Key("service.name"))
	assert.True(t, found)
	assert.Equal(t, "drive-test", serviceName.AsString())
}
