package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/worktime/internal/logging"
	"github.com/sadopc/worktime/internal/notify"
	"github.com/sadopc/worktime/internal/settings"
	"github.com/sadopc/worktime/internal/store"
	"github.com/sadopc/worktime/internal/timer"
)

type clock struct{ current time.Time }

func (c *clock) Now() time.Time          { return c.current }
func (c *clock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type alert struct {
	kind  notify.Kind
	delay time.Duration
}

type recordingNotifier struct {
	pending   []alert
	cancelled int
}

func (r *recordingNotifier) Schedule(kind notify.Kind, delay time.Duration) {
	r.pending = append(r.pending, alert{kind, delay})
}

func (r *recordingNotifier) CancelAllPending() {
	r.pending = nil
	r.cancelled++
}

type failingEntries struct{}

func (failingEntries) Upsert(store.WorkEntry) (*store.WorkEntry, error) {
	return nil, errors.New("disk full")
}

type harness struct {
	svc      *Service
	store    *store.Store
	pulse    *timer.Pulse
	clock    *clock
	notifier *recordingNotifier
	settings settings.Settings
}

func newHarness(t *testing.T, s settings.Settings) *harness {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := &harness{
		store:    st,
		pulse:    timer.NewPulse(),
		clock:    &clock{current: time.Date(2023, 11, 20, 9, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
		settings: s,
	}
	h.svc = h.newService(st)
	return h
}

func (h *harness) newService(entries EntryStore) *Service {
	return New(Deps{
		Entries:  entries,
		Settings: func() settings.Settings { return h.settings },
		Notifier: h.notifier,
		Slot:     h.store,
		Ticks:    h.pulse,
		Now:      h.clock.Now,
		Logger:   logging.Discard(),
	})
}

func (h *harness) run(n int) {
	for i := 0; i < n; i++ {
		h.clock.Advance(time.Second)
		h.pulse.Fire()
	}
}

func shortDay() settings.Settings {
	s := settings.Defaults()
	s.WorkSeconds = 10
	s.MaxOvertimeSeconds = 5
	s.GrossPayPerMonth = 4000
	return s
}

func TestService_StartSchedulesAlerts(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Start())

	assert.True(t, h.svc.Active())
	assert.Equal(t, []alert{
		{notify.WorkTimeFinished, 10 * time.Second},
		{notify.OvertimeFinished, 15 * time.Second},
	}, h.notifier.pending)

	assert.ErrorIs(t, h.svc.Start(), ErrSessionActive)
}

func TestService_NoAlertsWhenDisabled(t *testing.T) {
	s := shortDay()
	s.SendingNotification = false
	h := newHarness(t, s)
	require.NoError(t, h.svc.Start())
	assert.Empty(t, h.notifier.pending)
}

func TestService_NaturalCompletionRecordsEntry(t *testing.T) {
	h := newHarness(t, shortDay())
	start := h.clock.Now()
	require.NoError(t, h.svc.Start())

	h.run(15)
	assert.False(t, h.svc.Active())
	require.NoError(t, h.svc.Err())

	last := h.svc.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, int64(10), last.WorkSeconds)
	assert.Equal(t, int64(5), last.OvertimeSeconds)
	assert.Equal(t, int64(10), last.StandardWorkSeconds)
	assert.Equal(t, int64(5), last.MaxOvertimeSeconds)
	assert.Equal(t, 4000.0, last.GrossPayPerMonth)
	assert.True(t, last.Start.Equal(start))
	assert.True(t, last.Finish.Equal(start.Add(15*time.Second)))
	assert.Nil(t, last.NetPay)

	n, err := h.store.CountEntries()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_StopRecordsPartialSession(t *testing.T) {
	s := shortDay()
	s.CalculatingNetPay = true
	h := newHarness(t, s)
	require.NoError(t, h.svc.Start())

	h.run(4)
	require.NoError(t, h.svc.Stop())
	assert.False(t, h.svc.Active())
	assert.Empty(t, h.notifier.pending)

	last := h.svc.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, int64(4), last.WorkSeconds)
	assert.Equal(t, int64(0), last.OvertimeSeconds)
	require.NotNil(t, last.NetPay)

	// A second stop is a no-op.
	require.NoError(t, h.svc.Stop())
	n, _ := h.store.CountEntries()
	assert.Equal(t, 1, n)
}

func TestService_SettingsChangeAppliesOnNextStart(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Start())

	h.settings.WorkSeconds = 100
	h.run(15)
	assert.Equal(t, int64(10), h.svc.LastEntry().WorkSeconds)

	require.NoError(t, h.svc.Start())
	assert.Equal(t, 100*time.Second, h.svc.Orchestrator().Configuration().Work)
}

func TestService_PauseCancelsAlertsResumeReschedules(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Start())
	h.run(3)

	h.svc.Pause()
	assert.Equal(t, timer.Paused, h.svc.Orchestrator().State())
	assert.Empty(t, h.notifier.pending)

	h.svc.Resume()
	assert.Equal(t, []alert{
		{notify.WorkTimeFinished, 7 * time.Second},
		{notify.OvertimeFinished, 12 * time.Second},
	}, h.notifier.pending)
}

func TestService_SuspendAndResumeInProcess(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Start())
	h.run(8)

	require.NoError(t, h.svc.Suspend())
	data, err := h.store.GetState(timer.SnapshotKey)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Empty(t, h.notifier.pending)

	h.clock.Advance(4 * time.Second)
	h.pulse.FireN(4)
	require.NoError(t, h.svc.ResumeFromBackground())

	o := h.svc.Orchestrator()
	assert.Equal(t, timer.Finished, o.Work().State())
	assert.Equal(t, 2*time.Second, o.Overtime().Counter())
	assert.Equal(t, []alert{{notify.OvertimeFinished, 3 * time.Second}}, h.notifier.pending)

	data, _ = h.store.GetState(timer.SnapshotKey)
	assert.Nil(t, data, "slot is cleared after resume")
}

func TestService_SessionEndsWhileSuspended(t *testing.T) {
	h := newHarness(t, shortDay())
	start := h.clock.Now()
	require.NoError(t, h.svc.Start())
	h.run(8)

	require.NoError(t, h.svc.Suspend())
	h.clock.Advance(time.Hour)
	require.NoError(t, h.svc.ResumeFromBackground())

	last := h.svc.LastEntry()
	require.NotNil(t, last)
	assert.True(t, last.Finish.Equal(start.Add(15*time.Second)))
	assert.Equal(t, int64(5), last.OvertimeSeconds)

	// Resuming again records nothing new.
	require.NoError(t, h.svc.ResumeFromBackground())
	n, _ := h.store.CountEntries()
	assert.Equal(t, 1, n)
}

func TestService_RestoreAcrossRelaunch(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Start())
	h.run(3)
	require.NoError(t, h.svc.Suspend())

	h.clock.Advance(2 * time.Second)
	h.pulse = timer.NewPulse()
	relaunched := h.newService(h.store)

	ok, err := relaunched.Restore()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, relaunched.Active())
	assert.Equal(t, 5*time.Second, relaunched.Orchestrator().Work().Counter())

	data, _ := h.store.GetState(timer.SnapshotKey)
	assert.Nil(t, data)

	h.run(10)
	require.NotNil(t, relaunched.LastEntry())
	assert.Equal(t, int64(5), relaunched.LastEntry().OvertimeSeconds)
}

func TestService_RestoreEmptySlot(t *testing.T) {
	h := newHarness(t, shortDay())
	ok, err := h.svc.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RestoreDiscardsCorruptSnapshot(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.store.PutState(timer.SnapshotKey, []byte("{broken")))

	ok, err := h.svc.Restore()
	require.NoError(t, err)
	assert.False(t, ok)

	data, _ := h.store.GetState(timer.SnapshotKey)
	assert.Nil(t, data)
}

func TestService_RecordErrorSurfaces(t *testing.T) {
	h := newHarness(t, shortDay())
	svc := h.newService(failingEntries{})
	require.NoError(t, svc.Start())

	h.run(2)
	assert.Error(t, svc.Stop())
	assert.Nil(t, svc.LastEntry())
}

func TestService_SuspendIdleIsNoop(t *testing.T) {
	h := newHarness(t, shortDay())
	require.NoError(t, h.svc.Suspend())
	require.NoError(t, h.svc.ResumeFromBackground())

	data, _ := h.store.GetState(timer.SnapshotKey)
	assert.Nil(t, data)
}
