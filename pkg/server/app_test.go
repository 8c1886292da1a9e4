package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"EngineMirror/pkg/config"
	applogger "EngineMirror/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	started, stopped atomic.Bool
	startErr         error
}

func (f *fakeScheduler) Start(context.Context) error {
	f.started.Store(true)
	return f.startErr
}

func (f *fakeScheduler) Stop() { f.stopped.Store(true) }

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func TestRunContextStopsEverything(t *testing.T) {
	sched := &fakeScheduler{}
	var closed atomic.Bool
	app := New(config.Default(), applogger.Nop(), sched, nil, closerFunc(func() error {
		closed.Store(true)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	require.Eventually(t, sched.started.Load, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunContext did not return")
	}
	assert.True(t, sched.stopped.Load())
	assert.True(t, closed.Load())
}

func TestRunContextSchedulerStartError(t *testing.T) {
	sched := &fakeScheduler{startErr: errors.New("already started")}
	app := New(config.Default(), applogger.Nop(), sched, nil)

	err := app.RunContext(context.Background())
	require.Error(t, err)
	assert.True(t, sched.stopped.Load())
}
