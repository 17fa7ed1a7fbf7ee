package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownClosesResourcesInReverseOrder(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)

	var order []string
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "first")
		return nil
	}))
	sm.RegisterCloser(CloserFunc(func() error {
		order = append(order, "second")
		return nil
	}))

	require.NoError(t, sm.Shutdown(context.Background(), "test"))
	assert.Equal(t, []string{"second", "first"}, order)
	assert.True(t, sm.IsShuttingDown())
}

func TestShutdownIsIdempotent(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)

	calls := 0
	sm.RegisterCloser(CloserFunc(func() error {
		calls++
		return nil
	}))

	require.NoError(t, sm.Shutdown(context.Background(), "first"))
	require.NoError(t, sm.Shutdown(context.Background(), "second"))
	assert.Equal(t, 1, calls)
}

func TestShutdownReportsCloserError(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)
	sm.RegisterCloser(CloserFunc(func() error {
		return errors.New("disk gone")
	}))

	err := sm.Shutdown(context.Background(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestTrackRequestAfterShutdown(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)

	assert.True(t, sm.TrackRequest())
	sm.UntrackRequest()
	assert.Equal(t, int64(0), sm.InFlightCount())

	require.NoError(t, sm.Shutdown(context.Background(), "test"))
	assert.False(t, sm.TrackRequest())
}

func TestMiddlewareRejectsDuringShutdown(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)
	handler := Middleware(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, sm.Shutdown(context.Background(), "test"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListenForSignalsContextCancel(t *testing.T) {
	sm := NewShutdownManager(DefaultShutdownConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.ListenForSignals(ctx))
	assert.True(t, sm.IsShuttingDown())
}
