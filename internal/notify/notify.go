// Package notify schedules the alerts sent when work or overtime runs out.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Kind int

const (
	WorkTimeFinished Kind = iota
	OvertimeFinished
)

func (k Kind) String() string {
	switch k {
	case WorkTimeFinished:
		return "work time finished"
	case OvertimeFinished:
		return "overtime finished"
	}
	return "unknown"
}

// Scheduler schedules and cancels local alerts.
type Scheduler interface {
	Schedule(kind Kind, delay time.Duration)
	CancelAllPending()
}

// Nop drops every alert.
type Nop struct{}

func (Nop) Schedule(Kind, time.Duration) {}
func (Nop) CancelAllPending()            {}

type stopper interface {
	Stop() bool
}

// Local delivers alerts in-process on the channel returned by C.
type Local struct {
	log   *slog.Logger
	after func(time.Duration, func()) stopper

	mu      sync.Mutex
	nextID  int
	pending map[int]stopper
	ch      chan Kind
}

func NewLocal(log *slog.Logger) *Local {
	return &Local{
		log: log,
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		pending: make(map[int]stopper),
		ch:      make(chan Kind, 8),
	}
}

// C delivers fired alerts. Alerts are dropped if nobody drains it.
func (l *Local) C() <-chan Kind { return l.ch }

// Schedule fires kind after delay. A non-positive delay fires immediately.
func (l *Local) Schedule(kind Kind, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.pending[id] = l.after(delay, func() { l.fire(id, kind) })
	l.log.Debug("notification scheduled", "kind", kind.String(), "delay", delay)
}

func (l *Local) CancelAllPending() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, s := range l.pending {
		s.Stop()
		delete(l.pending, id)
	}
}

// Pending returns the number of alerts that have not fired yet.
func (l *Local) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Local) fire(id int, kind Kind) {
	l.mu.Lock()
	if _, ok := l.pending[id]; !ok {
		l.mu.Unlock()
		return
	}
	delete(l.pending, id)
	l.mu.Unlock()

	select {
	case l.ch <- kind:
		l.log.Info("notification fired", "kind", kind.String())
	default:
		l.log.Warn("notification dropped", "kind", kind.String())
	}
}
