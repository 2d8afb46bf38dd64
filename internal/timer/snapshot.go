package timer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotKey is the storage slot a suspended session is written to.
// Each suspend overwrites it.
const SnapshotKey = "timer.snapshot"

// ErrInvalidSnapshot reports a snapshot that cannot be restored.
var ErrInvalidSnapshot = errors.New("timer: invalid snapshot")

// Snapshot is a suspended session. It lives for one suspend/resume cycle.
type Snapshot struct {
	Configuration   Configuration
	WorkCounter     time.Duration
	WorkState       State
	OvertimeCounter time.Duration
	// OvertimeState is nil when the session has no overtime timer.
	OvertimeState *State
	StartedAt     time.Time
	CapturedAt    time.Time
}

// Validate checks the snapshot against the invariants a restore relies on.
func (s Snapshot) Validate() error {
	cfg := s.Configuration
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.WorkCounter < 0 || s.WorkCounter > cfg.Work {
		return fmt.Errorf("%w: work counter %s outside [0, %s]", ErrInvalidSnapshot, s.WorkCounter, cfg.Work)
	}
	if s.WorkState != Finished && s.WorkCounter == cfg.Work {
		return fmt.Errorf("%w: work counter at limit in state %s", ErrInvalidSnapshot, s.WorkState)
	}
	if s.OvertimeState == nil {
		return nil
	}
	if !cfg.LoggingOvertime || !cfg.HasOvertime() {
		return fmt.Errorf("%w: overtime state without overtime logging", ErrInvalidSnapshot)
	}
	if s.OvertimeCounter < 0 || s.OvertimeCounter > cfg.Overtime {
		return fmt.Errorf("%w: overtime counter %s outside [0, %s]", ErrInvalidSnapshot, s.OvertimeCounter, cfg.Overtime)
	}
	if *s.OvertimeState != Finished && s.OvertimeCounter == cfg.Overtime {
		return fmt.Errorf("%w: overtime counter at limit in state %s", ErrInvalidSnapshot, *s.OvertimeState)
	}
	if *s.OvertimeState != NotStarted && s.WorkState != Finished {
		return fmt.Errorf("%w: overtime %s before work finished", ErrInvalidSnapshot, *s.OvertimeState)
	}
	return nil
}

type snapshotJSON struct {
	WorkSeconds     float64   `json:"work_seconds"`
	LoggingOvertime bool      `json:"logging_overtime"`
	OvertimeSeconds float64   `json:"overtime_seconds,omitempty"`
	WorkCounter     float64   `json:"work_counter"`
	WorkState       State     `json:"work_state"`
	OvertimeCounter float64   `json:"overtime_counter,omitempty"`
	OvertimeState   *State    `json:"overtime_state,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	CapturedAt      time.Time `json:"captured_at"`
}

// EncodeSnapshot serializes s as JSON with durations in seconds.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshotJSON{
		WorkSeconds:     s.Configuration.Work.Seconds(),
		LoggingOvertime: s.Configuration.LoggingOvertime,
		OvertimeSeconds: s.Configuration.Overtime.Seconds(),
		WorkCounter:     s.WorkCounter.Seconds(),
		WorkState:       s.WorkState,
		OvertimeCounter: s.OvertimeCounter.Seconds(),
		OvertimeState:   s.OvertimeState,
		StartedAt:       s.StartedAt,
		CapturedAt:      s.CapturedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates data written by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var w snapshotJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	s := Snapshot{
		Configuration: Configuration{
			Work:            seconds(w.WorkSeconds),
			LoggingOvertime: w.LoggingOvertime,
			Overtime:        seconds(w.OvertimeSeconds),
		},
		WorkCounter:     seconds(w.WorkCounter),
		WorkState:       w.WorkState,
		OvertimeCounter: seconds(w.OvertimeCounter),
		OvertimeState:   w.OvertimeState,
		StartedAt:       w.StartedAt,
		CapturedAt:      w.CapturedAt,
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
