package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeServer struct {
	started chan struct{}
	err     error
}

func (s *fakeServer) Run(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return s.err
}

func TestServeWhileLoading_ServerStartsBeforeLoadFinishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &fakeServer{started: make(chan struct{})}

	loadDone := make(chan struct{})
	load := func(ctx context.Context) error {
		defer close(loadDone)
		// a backend that never answers
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		done <- serveWhileLoading(ctx, srv, load, zap.NewNop())
	}()

	select {
	case <-srv.started:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start while the initial load was pending")
	}
	select {
	case <-loadDone:
		t.Fatal("initial load finished before shutdown")
	default:
	}

	cancel()
	require.NoError(t, <-done)
	<-loadDone
}

func TestServeWhileLoading_ReturnsServerError(t *testing.T) {
	boom := errors.New("listen failed")
	srv := &failingServer{err: boom}

	loaded := false
	err := serveWhileLoading(context.Background(), srv, func(ctx context.Context) error {
		<-ctx.Done()
		loaded = true
		return nil
	}, zap.NewNop())

	require.ErrorIs(t, err, boom)
	require.True(t, loaded)
}

type failingServer struct {
	err error
}

func (s *failingServer) Run(ctx context.Context) error {
	return s.err
}
