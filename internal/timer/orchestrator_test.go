package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ current time.Time }

func newClock() *clock {
	return &clock{current: time.Date(2023, 11, 20, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time          { return c.current }
func (c *clock) Advance(d time.Duration) { c.current = c.current.Add(d) }

// run fires n ticks, moving the clock one second per tick.
func (c *clock) run(p *Pulse, n int) {
	for i := 0; i < n; i++ {
		c.Advance(time.Second)
		p.Fire()
	}
}

type completions struct{ at []time.Time }

func (c *completions) record(at time.Time) { c.at = append(c.at, at) }

func newTestOrchestrator(t *testing.T, cfg Configuration) (*Orchestrator, *Pulse, *clock, *completions) {
	t.Helper()
	p := NewPulse()
	c := newClock()
	o, err := NewOrchestrator(cfg, p, c.Now)
	require.NoError(t, err)
	done := &completions{}
	o.OnComplete(done.record)
	return o, p, c, done
}

var (
	workOnly     = Configuration{Work: 10 * time.Second}
	withOvertime = Configuration{Work: 10 * time.Second, LoggingOvertime: true, Overtime: 5 * time.Second}
)

func TestNewOrchestrator_InvalidConfiguration(t *testing.T) {
	_, err := NewOrchestrator(Configuration{}, NewPulse(), nil)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestOrchestrator_OvertimeAbsentWhenNotLogging(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(t, Configuration{Work: time.Minute, Overtime: time.Minute})
	assert.Nil(t, o.Overtime())
}

func TestOrchestrator_WorkOnlyCompletes(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, workOnly)
	start := c.Now()

	o.Start()
	assert.Equal(t, Running, o.State())
	assert.Equal(t, start, o.StartedAt())

	c.run(p, 10)
	assert.Equal(t, Finished, o.State())
	require.Len(t, done.at, 1)
	assert.Equal(t, start.Add(10*time.Second), done.at[0])
}

func TestOrchestrator_OvertimeStartsAutomatically(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)

	o.Start()
	c.run(p, 10)
	assert.Equal(t, Finished, o.Work().State())
	assert.Equal(t, Running, o.Overtime().State())
	assert.Equal(t, time.Duration(0), o.Overtime().Counter())
	assert.Equal(t, Running, o.State())
	assert.Empty(t, done.at)

	c.run(p, 5)
	assert.Equal(t, Finished, o.State())
	assert.Len(t, done.at, 1)
}

func TestOrchestrator_PauseResume(t *testing.T) {
	o, p, c, _ := newTestOrchestrator(t, withOvertime)

	o.Start()
	c.run(p, 3)
	o.Pause()
	assert.Equal(t, Paused, o.State())
	c.run(p, 3)
	assert.Equal(t, 3*time.Second, o.Work().Counter())

	o.Resume()
	assert.Equal(t, Running, o.State())
	c.run(p, 9)
	o.Pause()
	assert.Equal(t, Paused, o.State())
	assert.Equal(t, Paused, o.Overtime().State())
	assert.Equal(t, 2*time.Second, o.Overtime().Counter())
}

func TestOrchestrator_StopCompletesOnce(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)

	o.Stop()
	assert.Equal(t, NotStarted, o.State())
	assert.Empty(t, done.at)

	o.Start()
	c.run(p, 4)
	o.Stop()
	o.Stop()
	assert.Equal(t, Finished, o.State())
	require.Len(t, done.at, 1)
	assert.Equal(t, c.Now(), done.at[0])
	assert.Equal(t, 4*time.Second, o.Work().Counter())

	c.run(p, 20)
	assert.Len(t, done.at, 1)
}

func TestOrchestrator_ResumeFromBackground_WorkOnlyShortGap(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, workOnly)
	o.Start()
	c.run(p, 2)

	snap := o.Suspend()
	c.Advance(5 * time.Second)
	p.FireN(3)
	assert.Equal(t, 2*time.Second, o.Work().Counter(), "suspended timers ignore ticks")

	o.ResumeFromBackground(snap.CapturedAt)
	assert.Equal(t, 7*time.Second, o.Work().Counter())
	assert.Equal(t, Running, o.State())
	assert.Empty(t, done.at)

	c.run(p, 3)
	assert.Len(t, done.at, 1)
}

func TestOrchestrator_ResumeFromBackground_WorkOnlyFinishedWhileAway(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, workOnly)
	o.Start()
	c.run(p, 4)

	snap := o.Suspend()
	c.Advance(time.Hour)
	o.ResumeFromBackground(snap.CapturedAt)

	assert.Equal(t, Finished, o.State())
	require.Len(t, done.at, 1)
	assert.Equal(t, snap.CapturedAt.Add(6*time.Second), done.at[0])
	assert.False(t, done.at[0].After(c.Now()))
}

func TestOrchestrator_ResumeFromBackground_SplitsIntoOvertime(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 8)

	snap := o.Suspend()
	c.Advance(4 * time.Second)
	o.ResumeFromBackground(snap.CapturedAt)

	assert.Equal(t, Finished, o.Work().State())
	assert.Equal(t, Running, o.Overtime().State())
	assert.Equal(t, 2*time.Second, o.Overtime().Counter())
	assert.Empty(t, done.at)

	c.run(p, 3)
	assert.Len(t, done.at, 1)
}

func TestOrchestrator_ResumeFromBackground_SplitFinishesOvertime(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 8)

	snap := o.Suspend()
	c.Advance(time.Hour)
	o.ResumeFromBackground(snap.CapturedAt)

	assert.Equal(t, Finished, o.State())
	require.Len(t, done.at, 1)
	// 2s of work left, then 5s of overtime.
	assert.Equal(t, snap.CapturedAt.Add(7*time.Second), done.at[0])
	assert.Equal(t, 5*time.Second, o.Overtime().Counter())
}

func TestOrchestrator_ResumeFromBackground_OnlyOvertimeRunning(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 11)

	snap := o.Suspend()
	c.Advance(10 * time.Second)
	o.ResumeFromBackground(snap.CapturedAt)

	require.Len(t, done.at, 1)
	assert.Equal(t, snap.CapturedAt.Add(4*time.Second), done.at[0])
}

func TestOrchestrator_ResumeFromBackground_PausedIsUntouched(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 3)
	o.Pause()

	snap := o.Suspend()
	c.Advance(time.Hour)
	o.ResumeFromBackground(snap.CapturedAt)

	assert.Equal(t, Paused, o.State())
	assert.Equal(t, 3*time.Second, o.Work().Counter())
	assert.Empty(t, done.at)
}

func TestOrchestrator_AtMostOneCompletionAcrossCycles(t *testing.T) {
	o, p, c, done := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 5)

	for i := 0; i < 6; i++ {
		snap := o.Suspend()
		c.Advance(4 * time.Second)
		o.ResumeFromBackground(snap.CapturedAt)
		c.run(p, 1)
	}
	assert.Equal(t, Finished, o.State())
	assert.Len(t, done.at, 1)

	o.ResumeFromBackground(c.Now().Add(-time.Hour))
	assert.Len(t, done.at, 1)
}

func TestOrchestrator_ResumeFromBackground_ReplaysOnce(t *testing.T) {
	o, p, c, _ := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 2)

	snap := o.Suspend()
	c.Advance(3 * time.Second)
	o.ResumeFromBackground(snap.CapturedAt)
	assert.Equal(t, 5*time.Second, o.Work().Counter())

	o.ResumeFromBackground(snap.CapturedAt)
	assert.Equal(t, 5*time.Second, o.Work().Counter())
	assert.Equal(t, Running, o.State())
}

func TestOrchestrator_ResumeFromBackground_WithoutSuspend(t *testing.T) {
	o, p, c, _ := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 2)

	o.ResumeFromBackground(c.Now().Add(-3 * time.Second))
	assert.Equal(t, 2*time.Second, o.Work().Counter())
}

func TestOrchestrator_EightHourDayScenario(t *testing.T) {
	cfg := Configuration{Work: 28800 * time.Second, LoggingOvertime: true, Overtime: 18000 * time.Second}
	o, p, c, done := newTestOrchestrator(t, cfg)

	o.Start()
	c.run(p, 28800)
	assert.Equal(t, Finished, o.Work().State())
	assert.Equal(t, Running, o.Overtime().State())
	assert.Equal(t, time.Duration(0), o.Overtime().Counter())

	snap := o.Suspend()
	c.Advance(3600 * time.Second)
	o.ResumeFromBackground(snap.CapturedAt)

	assert.Equal(t, 3600*time.Second, o.Overtime().Counter())
	assert.Equal(t, Running, o.Overtime().State())
	assert.Empty(t, done.at)
}

func TestRestoreOrchestrator_AcrossRelaunch(t *testing.T) {
	o, p, c, _ := newTestOrchestrator(t, withOvertime)
	o.Start()
	c.run(p, 9)

	data, err := EncodeSnapshot(o.Suspend())
	require.NoError(t, err)

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)

	p2 := NewPulse()
	c.Advance(3 * time.Second)
	restored, err := RestoreOrchestrator(snap, p2, c.Now)
	require.NoError(t, err)
	done := &completions{}
	restored.OnComplete(done.record)

	restored.ResumeFromBackground(snap.CapturedAt)
	assert.Equal(t, Finished, restored.Work().State())
	assert.Equal(t, 2*time.Second, restored.Overtime().Counter())
	assert.True(t, o.StartedAt().Equal(restored.StartedAt()))

	c.run(p2, 3)
	assert.Len(t, done.at, 1)
}

func TestRestoreOrchestrator_RejectsInvalidSnapshot(t *testing.T) {
	st := Running
	snap := Snapshot{
		Configuration: workOnly,
		WorkCounter:   3 * time.Second,
		WorkState:     Finished,
		OvertimeState: &st,
	}
	_, err := RestoreOrchestrator(snap, NewPulse(), nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	snap = Snapshot{Configuration: workOnly, WorkCounter: time.Hour, WorkState: Running}
	_, err = RestoreOrchestrator(snap, NewPulse(), nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestDecodeSnapshot_Garbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte("{not json"))
	assert.Error(t, err)
}
