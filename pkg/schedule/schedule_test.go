package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCron(t *testing.T) {
	spec, err := parseCron("*/15 9-17 * * 1-5")
	require.NoError(t, err)

	at := func(h, m int, day int) time.Time {
		return time.Date(2026, 3, day, h, m, 0, 0, time.UTC)
	}
	// 2026-03-02 is a Monday, 2026-03-01 a Sunday.
	assert.True(t, spec.match(at(9, 0, 2)))
	assert.True(t, spec.match(at(17, 45, 2)))
	assert.False(t, spec.match(at(9, 10, 2)))
	assert.False(t, spec.match(at(18, 0, 2)))
	assert.False(t, spec.match(at(9, 0, 1)))

	list, err := parseCron("0,30 0 1 1,7 *")
	require.NoError(t, err)
	assert.True(t, list.match(time.Date(2026, 7, 1, 0, 30, 0, 0, time.UTC)))
	assert.False(t, list.match(time.Date(2026, 6, 1, 0, 30, 0, 0, time.UTC)))

	stepFrom, err := parseCron("5/20 * * * *")
	require.NoError(t, err)
	assert.True(t, stepFrom.match(time.Date(2026, 1, 1, 0, 45, 0, 0, time.UTC)))
	assert.False(t, stepFrom.match(time.Date(2026, 1, 1, 0, 40, 0, 0, time.UTC)))
}

func TestParseCronRejectsBadExpressions(t *testing.T) {
	for _, expr := range []string{"", "* * * *", "60 * * * *", "*/0 * * * *", "a * * * *", "5-1 * * * *", "* * 0 * *"} {
		_, err := parseCron(expr)
		assert.Error(t, err, expr)
	}

	s := New()
	assert.Error(t, s.Cron("nope").Run(func(context.Context) {}))
	assert.Error(t, s.Every(0).Seconds().Run(func(context.Context) {}))
	assert.Empty(t, s.List())
}

func TestCronEntryFiresOncePerMinute(t *testing.T) {
	s := New()
	require.NoError(t, s.Cron("* * * * *").Name("reconcile").Run(func(context.Context) {}))
	e := s.entries[0]

	now := time.Date(2026, 3, 2, 10, 15, 5, 0, time.UTC)
	assert.True(t, e.due(now))
	e.lastRun = now
	assert.False(t, e.due(now.Add(30*time.Second)))
	assert.True(t, e.due(now.Add(time.Minute)))
}

func TestWithoutOverlappingSkipsBusyEntry(t *testing.T) {
	s := New()
	release := make(chan struct{})
	var runs int32
	require.NoError(t, s.Every(1).Seconds().WithoutOverlapping().Run(func(context.Context) {
		atomic.AddInt32(&runs, 1)
		<-release
	}))
	e := s.entries[0]
	ctx := context.Background()

	assert.True(t, s.dispatch(ctx, e, time.Now()))
	assert.False(t, s.dispatch(ctx, e, time.Now()))

	close(release)
	s.wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.True(t, s.dispatch(ctx, e, time.Now()))
	s.wg.Wait()
}

func TestStartRunsUntilCancelled(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Every(1).Hours().Name("warm").Run(func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	require.NoError(t, s.Every(1).Minutes().Run(func(context.Context) { panic("boom") }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("interval entry never ran")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Equal(t, []string{"warm  [every 1h0m0s]", "task-2  [every 1m0s]"}, s.List())
}
