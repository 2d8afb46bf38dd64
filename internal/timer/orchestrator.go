package timer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration reports a configuration no orchestrator can run.
var ErrInvalidConfiguration = errors.New("timer: invalid configuration")

// Configuration is the immutable setup of one session.
type Configuration struct {
	Work            time.Duration
	LoggingOvertime bool
	Overtime        time.Duration
}

// HasOvertime reports whether an overtime timer follows the work timer.
func (c Configuration) HasOvertime() bool {
	return c.LoggingOvertime && c.Overtime > 0
}

func (c Configuration) validate() error {
	if c.Work <= 0 {
		return fmt.Errorf("work limit %s: %w", c.Work, ErrInvalidConfiguration)
	}
	if c.Overtime < 0 {
		return fmt.Errorf("overtime limit %s: %w", c.Overtime, ErrInvalidConfiguration)
	}
	return nil
}

// Orchestrator runs the work timer and, when overtime is logged, an overtime
// timer that starts the moment work finishes. It reports the end of the
// session once per run through the OnComplete callback.
type Orchestrator struct {
	cfg      Configuration
	work     *Timer
	overtime *Timer
	now      func() time.Time

	startedAt   time.Time
	suspended   bool
	completed   bool
	completedAt time.Time
	// pendingAt carries the catch-up completion instant into complete.
	pendingAt  *time.Time
	onComplete func(at time.Time)
}

// NewOrchestrator builds the timers for cfg. now defaults to time.Now.
func NewOrchestrator(cfg Configuration, ticks TickSource, now func() time.Time) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	o := &Orchestrator{
		cfg:  cfg,
		work: NewTimer(cfg.Work, ticks),
		now:  now,
	}
	o.work.OnFinish(o.workFinished)
	if cfg.HasOvertime() {
		o.overtime = NewTimer(cfg.Overtime, ticks)
		o.overtime.OnFinish(o.complete)
	}
	return o, nil
}

// OnComplete registers the session-completed callback.
func (o *Orchestrator) OnComplete(fn func(at time.Time)) { o.onComplete = fn }

func (o *Orchestrator) Configuration() Configuration { return o.cfg }
func (o *Orchestrator) Work() *Timer                 { return o.work }

// Overtime returns nil when overtime is not logged.
func (o *Orchestrator) Overtime() *Timer { return o.overtime }

func (o *Orchestrator) StartedAt() time.Time { return o.startedAt }

// Completed reports whether the session-completed event has fired, and when.
func (o *Orchestrator) Completed() (bool, time.Time) { return o.completed, o.completedAt }

// State merges both timers: Running beats Paused, Finished needs every timer
// finished (or the session completed by Stop).
func (o *Orchestrator) State() State {
	if o.completed {
		return Finished
	}
	w := o.work.State()
	if o.overtime == nil {
		return w
	}
	ot := o.overtime.State()
	switch {
	case w == Running || ot == Running:
		return Running
	case w == Paused || ot == Paused:
		return Paused
	case w == Finished && ot == Finished:
		return Finished
	}
	return NotStarted
}

// Elapsed is the total counted time across both timers.
func (o *Orchestrator) Elapsed() time.Duration {
	d := o.work.Counter()
	if o.overtime != nil {
		d += o.overtime.Counter()
	}
	return d
}

func (o *Orchestrator) Start() {
	if o.State() != NotStarted {
		return
	}
	o.startedAt = o.now()
	o.work.Start()
}

func (o *Orchestrator) Pause() {
	o.work.Pause()
	if o.overtime != nil {
		o.overtime.Pause()
	}
}

func (o *Orchestrator) Resume() {
	for _, t := range o.timers() {
		if t.State() == Paused {
			t.Resume(0)
		}
	}
}

// Stop ends the session now. It completes the session if it had started.
func (o *Orchestrator) Stop() {
	if o.completed || o.State() == NotStarted {
		return
	}
	for _, t := range o.timers() {
		t.Stop()
	}
	o.complete()
}

// Suspend captures the session and stops delivering ticks until
// ResumeFromBackground runs.
func (o *Orchestrator) Suspend() Snapshot {
	s := Snapshot{
		Configuration: o.cfg,
		WorkCounter:   o.work.Counter(),
		WorkState:     o.work.State(),
		StartedAt:     o.startedAt,
		CapturedAt:    o.now(),
	}
	if o.overtime != nil {
		st := o.overtime.State()
		s.OvertimeCounter = o.overtime.Counter()
		s.OvertimeState = &st
	}
	for _, t := range o.timers() {
		t.detach()
	}
	o.suspended = true
	return s
}

// ResumeFromBackground replays the time since suspendedAt into the running
// timer(s). If the session would have ended meanwhile, completion is reported
// at the instant it would have happened, which is never after now. Once the
// session has completed, or without a preceding Suspend, this is a no-op.
func (o *Orchestrator) ResumeFromBackground(suspendedAt time.Time) {
	if !o.suspended {
		return
	}
	o.suspended = false
	if o.completed {
		return
	}
	elapsed := o.now().Sub(suspendedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case o.overtime == nil:
		if o.work.State() == Running {
			o.catchUp(o.work, suspendedAt, elapsed)
		}
	case o.work.State() == Running:
		remaining := o.work.Remaining()
		if elapsed < remaining {
			o.work.Resume(elapsed)
			return
		}
		// Finishing work starts overtime through workFinished.
		o.work.Resume(remaining)
		o.catchUp(o.overtime, suspendedAt.Add(remaining), elapsed-remaining)
	case o.overtime.State() == Running:
		o.catchUp(o.overtime, suspendedAt, elapsed)
	}
}

func (o *Orchestrator) catchUp(t *Timer, base time.Time, elapsed time.Duration) {
	if remaining := t.Remaining(); elapsed >= remaining {
		at := base.Add(remaining)
		o.pendingAt = &at
	}
	t.Resume(elapsed)
}

func (o *Orchestrator) workFinished() {
	if o.overtime != nil {
		o.overtime.Start()
		return
	}
	o.complete()
}

func (o *Orchestrator) complete() {
	if o.completed {
		return
	}
	at := o.now()
	if o.pendingAt != nil {
		at = *o.pendingAt
		o.pendingAt = nil
	}
	o.completed = true
	o.completedAt = at
	if o.onComplete != nil {
		o.onComplete(at)
	}
}

func (o *Orchestrator) timers() []*Timer {
	if o.overtime == nil {
		return []*Timer{o.work}
	}
	return []*Timer{o.work, o.overtime}
}

// RestoreOrchestrator rebuilds an orchestrator from a snapshot. Ticks stay
// detached until ResumeFromBackground(s.CapturedAt) is called.
func RestoreOrchestrator(s Snapshot, ticks TickSource, now func() time.Time) (*Orchestrator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o, err := NewOrchestrator(s.Configuration, ticks, now)
	if err != nil {
		return nil, err
	}
	o.startedAt = s.StartedAt
	o.suspended = true
	o.work.restore(s.WorkCounter, s.WorkState)
	if o.overtime != nil && s.OvertimeState != nil {
		o.overtime.restore(s.OvertimeCounter, *s.OvertimeState)
	}
	if o.State() == Finished {
		o.completed = true
		o.completedAt = s.CapturedAt
	}
	return o, nil
}
