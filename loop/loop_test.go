package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestManualAfterFiresOnce(t *testing.T) {
	m := NewManual(epoch, 0)
	calls := 0
	m.After(100*time.Millisecond, func() { calls++ })

	m.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, calls)

	m.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)

	m.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, m.Pending())
}

func TestManualEveryRepeatsUntilCancelled(t *testing.T) {
	m := NewManual(epoch, 0)
	var fired []time.Time
	cancel := m.Every(3*time.Second, func() { fired = append(fired, m.Now()) })

	m.Advance(10 * time.Second)
	require.Len(t, fired, 3)
	assert.Equal(t, epoch.Add(3*time.Second), fired[0])
	assert.Equal(t, epoch.Add(9*time.Second), fired[2])

	cancel()
	cancel()
	m.Advance(10 * time.Second)
	assert.Len(t, fired, 3)
}

func TestManualCancelBeforeFire(t *testing.T) {
	m := NewManual(epoch, 0)
	called := false
	cancel := m.After(time.Second, func() { called = true })
	cancel()
	m.Advance(2 * time.Second)
	assert.False(t, called)
}

func TestManualFrameChain(t *testing.T) {
	m := NewManual(epoch, 10*time.Millisecond)
	frames := 0
	var step func(time.Time)
	step = func(time.Time) {
		frames++
		if frames < 5 {
			m.RequestFrame(step)
		}
	}
	m.RequestFrame(step)
	assert.Equal(t, 1, m.PendingFrames())

	m.Advance(time.Second)
	assert.Equal(t, 5, frames)
	assert.Equal(t, 0, m.PendingFrames())
}

func TestManualOrderingIsStable(t *testing.T) {
	m := NewManual(epoch, 0)
	var order []string
	m.After(time.Second, func() { order = append(order, "a") })
	m.After(time.Second, func() { order = append(order, "b") })
	m.After(500*time.Millisecond, func() { order = append(order, "c") })
	m.Post(func() { order = append(order, "posted") })

	m.Advance(time.Second)
	assert.Equal(t, []string{"posted", "c", "a", "b"}, order)
}

func TestLoopRunsPostedWorkSerially(t *testing.T) {
	l := New(WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var counter int64
	finished := make(chan struct{})
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() {
			atomic.AddInt64(&counter, 1)
			if i == 99 {
				close(finished)
			}
		})
	}

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work did not run")
	}
	assert.EqualValues(t, 100, atomic.LoadInt64(&counter))

	l.Stop()
	require.NoError(t, <-done)
	assert.False(t, l.Post(func() {}))
}

func TestLoopRecoversFromPanics(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	ok := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(ok) })

	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after panic")
	}
}

func TestLoopCancelledFrameNeverRuns(t *testing.T) {
	l := New(WithFrameInterval(5 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	var ran atomic.Bool
	stop := l.RequestFrame(func(time.Time) { ran.Store(true) })
	stop()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load())
}
