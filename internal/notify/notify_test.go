package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/worktime/internal/logging"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

func newTestLocal() (*Local, *[]*fakeTimer) {
	l := NewLocal(logging.Discard())
	var timers []*fakeTimer
	l.after = func(d time.Duration, fn func()) stopper {
		ft := &fakeTimer{delay: d, fn: fn}
		timers = append(timers, ft)
		return ft
	}
	return l, &timers
}

func TestLocal_ScheduleAndFire(t *testing.T) {
	l, timers := newTestLocal()

	l.Schedule(WorkTimeFinished, 10*time.Minute)
	l.Schedule(OvertimeFinished, -time.Second)
	require.Len(t, *timers, 2)
	assert.Equal(t, 10*time.Minute, (*timers)[0].delay)
	assert.Equal(t, time.Duration(0), (*timers)[1].delay)
	assert.Equal(t, 2, l.Pending())

	(*timers)[0].fn()
	assert.Equal(t, WorkTimeFinished, <-l.C())
	assert.Equal(t, 1, l.Pending())
}

func TestLocal_CancelAllPending(t *testing.T) {
	l, timers := newTestLocal()
	l.Schedule(WorkTimeFinished, time.Minute)
	l.Schedule(OvertimeFinished, 2*time.Minute)

	l.CancelAllPending()
	assert.Equal(t, 0, l.Pending())
	for _, ft := range *timers {
		assert.True(t, ft.stopped)
	}

	// A timer that raced the cancel must not deliver.
	(*timers)[0].fn()
	select {
	case k := <-l.C():
		t.Fatalf("unexpected alert %s", k)
	default:
	}
}

func TestLocal_RealTimer(t *testing.T) {
	l := NewLocal(logging.Discard())
	l.Schedule(OvertimeFinished, time.Millisecond)

	select {
	case k := <-l.C():
		assert.Equal(t, OvertimeFinished, k)
	case <-time.After(2 * time.Second):
		t.Fatal("alert never fired")
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "work time finished", WorkTimeFinished.String())
	assert.Equal(t, "overtime finished", OvertimeFinished.String())
}

func TestNop(t *testing.T) {
	var s Scheduler = Nop{}
	s.Schedule(WorkTimeFinished, time.Second)
	s.CancelAllPending()
}
