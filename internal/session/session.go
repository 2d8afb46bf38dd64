// Package session owns the live work session: it drives the timers, records
// the finished entry and carries the session across suspends and relaunches.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/worktime/internal/notify"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/stats"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/timer"
)

var ErrSessionActive = errors.New("a session is already running")

// EntryStore receives finished sessions.
type EntryStore interface {
	Upsert(e store.WorkEntry) (*store.WorkEntry, error)
}

// Slot holds the suspended session between a suspend and the next resume.
type Slot interface {
	PutState(key string, value []byte) error
	GetState(key string) ([]byte, error)
	DeleteState(key string) error
}

type Deps struct {
	Entries  EntryStore
	Settings func() settings.Settings
	Notifier notify.Scheduler
	Slot     Slot
	Ticks    timer.TickSource
	Now      func() time.Time
	Logger   *slog.Logger
}

type Service struct {
	entries  EntryStore
	settings func() settings.Settings
	notifier notify.Scheduler
	slot     Slot
	ticks    timer.TickSource
	now      func() time.Time
	log      *slog.Logger

	orch        *timer.Orchestrator
	pay         settings.Settings // settings in force when the session started
	suspendedAt *time.Time
	last        *store.WorkEntry
	recordErr   error
}

func New(d Deps) *Service {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		entries:  d.Entries,
		settings: d.Settings,
		notifier: d.Notifier,
		slot:     d.Slot,
		ticks:    d.Ticks,
		now:      d.Now,
		log:      d.Logger,
	}
}

// Orchestrator returns the current session's timers, or nil before the first Start.
func (s *Service) Orchestrator() *timer.Orchestrator { return s.orch }

// Active reports whether a session is running or paused.
func (s *Service) Active() bool {
	if s.orch == nil {
		return false
	}
	st := s.orch.State()
	return st == timer.Running || st == timer.Paused
}

// LastEntry returns the entry recorded by the most recent session, if any.
func (s *Service) LastEntry() *store.WorkEntry { return s.last }

// Start begins a new session with the current settings.
func (s *Service) Start() error {
	if s.Active() {
		return ErrSessionActive
	}
	cfg := s.settings()
	orch, err := timer.NewOrchestrator(cfg.TimerConfiguration(), s.ticks, s.now)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	orch.OnComplete(s.record)
	s.orch = orch
	s.pay = cfg
	s.recordErr = nil
	s.suspendedAt = nil

	orch.Start()
	s.schedule()
	s.log.Info("session started", "work", cfg.TimerConfiguration().Work, "overtime", orch.Overtime() != nil)
	return nil
}

func (s *Service) Pause() {
	if s.orch == nil || s.orch.State() != timer.Running {
		return
	}
	s.orch.Pause()
	s.notifier.CancelAllPending()
}

func (s *Service) Resume() {
	if s.orch == nil || s.orch.State() != timer.Paused {
		return
	}
	s.orch.Resume()
	s.schedule()
}

// Stop ends the session now and records it. It returns the store error, if
// recording failed.
func (s *Service) Stop() error {
	if !s.Active() {
		return nil
	}
	s.orch.Stop()
	return s.takeRecordErr()
}

// Suspend writes the session to the slot and stops its ticks until
// ResumeFromBackground. It does nothing when no session is active.
func (s *Service) Suspend() error {
	if !s.Active() || s.suspendedAt != nil {
		return nil
	}
	snap := s.orch.Suspend()
	s.suspendedAt = &snap.CapturedAt
	s.notifier.CancelAllPending()

	data, err := timer.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.slot.PutState(timer.SnapshotKey, data); err != nil {
		return fmt.Errorf("suspend session: %w", err)
	}
	s.log.Info("session suspended", "work", snap.WorkCounter, "overtime", snap.OvertimeCounter)
	return nil
}

// ResumeFromBackground replays the time spent suspended and clears the slot.
// If the session ended meanwhile it is recorded at the instant it ended.
func (s *Service) ResumeFromBackground() error {
	if s.suspendedAt == nil {
		return nil
	}
	at := *s.suspendedAt
	s.suspendedAt = nil

	s.orch.ResumeFromBackground(at)
	if err := s.slot.DeleteState(timer.SnapshotKey); err != nil {
		s.log.Warn("clear session slot", "err", err)
	}
	s.schedule()
	s.log.Info("session resumed", "away", s.now().Sub(at).Round(time.Second), "state", s.orch.State().String())
	return s.takeRecordErr()
}

// Restore picks up a session suspended by a previous process. It reports
// whether a session was found. Unreadable snapshots are logged and discarded.
func (s *Service) Restore() (bool, error) {
	data, err := s.slot.GetState(timer.SnapshotKey)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if data == nil {
		return false, nil
	}
	defer func() {
		if err := s.slot.DeleteState(timer.SnapshotKey); err != nil {
			s.log.Warn("clear session slot", "err", err)
		}
	}()

	snap, err := timer.DecodeSnapshot(data)
	if err != nil {
		s.log.Warn("discarding session snapshot", "err", err)
		return false, nil
	}
	orch, err := timer.RestoreOrchestrator(snap, s.ticks, s.now)
	if err != nil {
		s.log.Warn("discarding session snapshot", "err", err)
		return false, nil
	}
	orch.OnComplete(s.record)
	s.orch = orch
	s.pay = s.settings()
	s.recordErr = nil
	s.suspendedAt = nil

	orch.ResumeFromBackground(snap.CapturedAt)
	s.schedule()
	s.log.Info("session restored", "captured_at", snap.CapturedAt, "state", orch.State().String())
	return true, s.takeRecordErr()
}

// record turns the completed session into a work entry.
func (s *Service) record(at time.Time) {
	s.notifier.CancelAllPending()

	cfg := s.orch.Configuration()
	start := s.orch.StartedAt()
	if at.Before(start) {
		at = start
	}
	e := store.WorkEntry{
		ID:                  store.NewWorkEntryID(),
		Start:               start,
		Finish:              at,
		WorkSeconds:         int64(s.orch.Work().Counter() / time.Second),
		StandardWorkSeconds: int64(cfg.Work / time.Second),
		MaxOvertimeSeconds:  s.pay.MaxOvertimeSeconds,
		GrossPayPerMonth:    s.pay.GrossPayPerMonth,
	}
	if ot := s.orch.Overtime(); ot != nil {
		e.OvertimeSeconds = int64(ot.Counter() / time.Second)
		e.MaxOvertimeSeconds = int64(cfg.Overtime / time.Second)
	}
	if s.pay.CalculatingNetPay {
		net := stats.NetPay(stats.EntryPay(e), s.pay.NetPayDeduction)
		e.NetPay = &net
	}

	saved, err := s.entries.Upsert(e)
	if err != nil {
		s.log.Error("record session", "err", err)
		s.recordErr = fmt.Errorf("record session: %w", err)
		return
	}
	s.last = saved
	s.log.Info("session recorded", "id", saved.ID, "work_seconds", saved.WorkSeconds, "overtime_seconds", saved.OvertimeSeconds)
}

// takeRecordErr returns and clears the error from the last recording attempt.
func (s *Service) takeRecordErr() error {
	err := s.recordErr
	s.recordErr = nil
	return err
}

// Err returns and clears a recording error raised on a tick.
func (s *Service) Err() error { return s.takeRecordErr() }

// schedule replaces pending alerts with ones matching the running timer.
func (s *Service) schedule() {
	s.notifier.CancelAllPending()
	if !s.settings().SendingNotification || s.orch == nil {
		return
	}
	work, overtime := s.orch.Work(), s.orch.Overtime()
	switch {
	case work.State() == timer.Running:
		s.notifier.Schedule(notify.WorkTimeFinished, work.Remaining())
		if overtime != nil {
			s.notifier.Schedule(notify.OvertimeFinished, work.Remaining()+overtime.Remaining())
		}
	case overtime != nil && overtime.State() == timer.Running:
		s.notifier.Schedule(notify.OvertimeFinished, overtime.Remaining())
	}
}
