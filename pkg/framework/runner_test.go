package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errA, errB := errors.New("a"), errors.New("b")
	err := errs.Add(errA).Aggregate()
	require.EqualError(t, err, "a")
	err = errs.Add(nil, errB).Aggregate()
	require.EqualError(t, err, "Multiple errors:\na\nb")
	require.True(t, errors.Is(err, errB))
}

func TestRunnerFailFast(t *testing.T) {
	failure := errors.New("transport closed")
	runner := NewRunner()
	runner.FailFast = true
	runner.Go(
		NamedRun("fail", RunFunc(func(ctx context.Context) error {
			return failure
		})),
		NamedRun("wait", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
	)
	err := runner.Wait()
	require.EqualError(t, err, "fail: transport closed")
	require.True(t, errors.Is(err, failure))
	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	require.Equal(t, "fail", taskErr.Task)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	unblock := make(chan struct{})
	var closed int
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	}), func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)

	closed = 0
	err = RunWithContextCloser(context.Background(), closerFunc(func() error {
		closed++
		return nil
	}), func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	require.NoError(t, RunWithContextCloser(context.Background(), nil, func() error { return nil }))
}

func TestLoop(t *testing.T) {
	ticks := make(chan int, 16)
	loop := NewLoop()
	loop.Interval = time.Millisecond
	loop.AddController(PrLvActuate, ControlFunc(func(cc ControlContext) error {
		select {
		case ticks <- cc.PriorityLevel():
		default:
		}
		return nil
	}))
	loop.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		select {
		case ticks <- cc.PriorityLevel():
		default:
		}
		return nil
	}))
	failure := errors.New("bus gone")
	started := make(chan struct{})
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		close(started)
		select {
		case <-time.After(20 * time.Millisecond):
			return failure
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	err := loop.Run(context.Background())
	<-started
	require.True(t, errors.Is(err, failure))
	require.Equal(t, PrLvSense, <-ticks)
	require.Equal(t, PrLvActuate, <-ticks)
}
