package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/api"
	"github.com/tendant/simple-discover/pkg/discover/config"
)

func TestRouter(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	services, err := cfg.BuildServices(context.Background())
	require.NoError(t, err)
	defer services.Close()

	server := httptest.NewServer(newRouter(cfg, services.Discover))
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	req, err := http.NewRequest("GET", server.URL+"/api/v1/discover/feed", nil)
	require.NoError(t, err)
	req.Header.Set(api.UserIDHeader, uuid.NewString())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type countingReconciler struct {
	discover.Service
	runs atomic.Int32
}

func (c *countingReconciler) ReconcileAll(ctx context.Context) (*discover.ReconcileResult, error) {
	c.runs.Add(1)
	now := time.Now()
	return &discover.ReconcileResult{PerType: map[discover.SourceKind]*discover.ReconcileTypeResult{}, StartedAt: now, FinishedAt: now}, nil
}

func TestReconcileLoopStopsOnCancel(t *testing.T) {
	svc := &countingReconciler{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runReconcileLoop(ctx, svc, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return svc.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconcile loop did not stop")
	}
}
