// Package timer implements the work/overtime session timers and the
// reconciliation of time spent suspended.
package timer

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a Timer or Orchestrator.
type State int

const (
	NotStarted State = iota
	Running
	Paused
	Finished
)

var stateNames = map[State]string{
	NotStarted: "not_started",
	Running:    "running",
	Paused:     "paused",
	Finished:   "finished",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	n, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("marshal timer state %d", int(s))
	}
	return []byte(n), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for st, n := range stateNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown timer state %q", string(b))
}

// Timer counts up from zero to a fixed limit, one second per tick.
// It is not safe for concurrent use; see TickSource.
type Timer struct {
	limit   time.Duration
	counter time.Duration
	state   State

	ticks    TickSource
	cancel   func()
	onFinish func()
}

// NewTimer returns a NotStarted timer. limit must be positive.
func NewTimer(limit time.Duration, ticks TickSource) *Timer {
	if limit <= 0 {
		panic(fmt.Sprintf("timer: non-positive limit %s", limit))
	}
	return &Timer{limit: limit, ticks: ticks}
}

// OnFinish registers fn to run when the counter reaches the limit.
// Stop does not call it.
func (t *Timer) OnFinish(fn func()) { t.onFinish = fn }

func (t *Timer) State() State             { return t.state }
func (t *Timer) Limit() time.Duration     { return t.limit }
func (t *Timer) Counter() time.Duration   { return t.counter }
func (t *Timer) Remaining() time.Duration { return t.limit - t.counter }

// Progress is Counter/Limit, always within [0, 1].
func (t *Timer) Progress() float64 { return float64(t.counter) / float64(t.limit) }

func (t *Timer) active() bool { return t.state == Running || t.state == Paused }

// Start resets the counter and begins ticking. Only valid from NotStarted.
func (t *Timer) Start() {
	if t.state != NotStarted {
		return
	}
	t.counter = 0
	t.state = Running
	t.attach()
}

// Pause stops ticking. Only valid while Running.
func (t *Timer) Pause() {
	if t.state != Running {
		return
	}
	t.state = Paused
	t.detach()
}

// Resume continues a Running or Paused timer and immediately adds delta,
// capped at the remaining time. A zero delta just resumes.
func (t *Timer) Resume(delta time.Duration) {
	if !t.active() {
		return
	}
	t.state = Running
	t.attach()
	if delta > 0 {
		t.Add(delta)
	}
}

// Stop ends the timer unconditionally. Only valid once started.
func (t *Timer) Stop() {
	if t.state == NotStarted || t.state == Finished {
		return
	}
	t.detach()
	t.state = Finished
}

// Add advances a running timer by d, clamped so the counter never passes the
// limit. Reaching the limit finishes the timer.
func (t *Timer) Add(d time.Duration) {
	if t.state != Running || d <= 0 {
		return
	}
	if d > t.Remaining() {
		d = t.Remaining()
	}
	t.counter += d
	if t.counter == t.limit {
		t.finish()
	}
}

func (t *Timer) tick() {
	t.Add(time.Second)
}

func (t *Timer) finish() {
	t.detach()
	t.state = Finished
	if t.onFinish != nil {
		t.onFinish()
	}
}

func (t *Timer) attach() {
	if t.cancel != nil || t.ticks == nil {
		return
	}
	t.cancel = t.ticks.Subscribe(t.tick)
}

func (t *Timer) detach() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// restore puts the timer into a captured state without ticking. A counter
// beyond the limit is a programming error; snapshots are validated first.
func (t *Timer) restore(counter time.Duration, state State) {
	if counter < 0 || counter > t.limit {
		panic(fmt.Sprintf("timer: restored counter %s outside [0, %s]", counter, t.limit))
	}
	t.detach()
	t.counter = counter
	t.state = state
}
