package update_queue_entry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTime struct{ now time.Time }

func (f fakeTime) Now() time.Time { return f.now }

type fakeQueueRepo struct {
	entry      *domain.QueueEntry
	updated    *domain.QueueEntry
	recomputed bool
}

func (f *fakeQueueRepo) GetByID(_ context.Context, _ int64) (*domain.QueueEntry, error) {
	return f.entry, nil
}

func (f *fakeQueueRepo) Update(_ context.Context, entry *domain.QueueEntry) error {
	f.updated = entry
	return nil
}

func (f *fakeQueueRepo) RecomputePositions(_ context.Context, _ int64, _ string) error {
	f.recomputed = true
	return nil
}

type statusUpdate struct {
	version int64
	status  domain.AppointmentStatus
}

type fakeAptRepo struct {
	apt     *domain.Appointment
	updates []statusUpdate
}

func (f *fakeAptRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	return f.apt, nil
}

func (f *fakeAptRepo) UpdateStatus(_ context.Context, _, version int64, status domain.AppointmentStatus) error {
	f.updates = append(f.updates, statusUpdate{version: version, status: status})
	return nil
}

type fakeStatsRepo struct {
	doctorID int64
	minutes  int
}

func (f *fakeStatsRepo) RecordConsultation(_ context.Context, doctorID int64, minutes int) error {
	f.doctorID = doctorID
	f.minutes = minutes
	return nil
}

type fakeAuditRepo struct {
	records []*domain.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *domain.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

var (
	today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now   = today.Add(10 * time.Hour)
)

func calledEntry() *domain.QueueEntry {
	called := today.Add(9*time.Hour + 55*time.Minute)
	return &domain.QueueEntry{
		ID:            55,
		HospitalID:    1,
		DoctorID:      7,
		AppointmentID: 10,
		QueueDate:     today,
		TokenDisplay:  "OPD-004",
		Status:        domain.QueueStatusCalled,
		Priority:      2,
		CheckInTime:   today.Add(9*time.Hour + 18*time.Minute),
		CalledTime:    &called,
		Version:       2,
	}
}

type fixture struct {
	uc    *UseCase
	queue *fakeQueueRepo
	apts  *fakeAptRepo
	stats *fakeStatsRepo
	audit *fakeAuditRepo
}

func newFixture(entry *domain.QueueEntry, aptStatus domain.AppointmentStatus) *fixture {
	f := &fixture{
		queue: &fakeQueueRepo{entry: entry},
		apts:  &fakeAptRepo{apt: &domain.Appointment{ID: 10, DoctorID: 7, Status: aptStatus, Version: 5}},
		stats: &fakeStatsRepo{},
		audit: &fakeAuditRepo{},
	}
	f.uc = NewUseCase(f.queue, f.apts, f.stats, f.audit, fakeTxManager{}, nopLogger{})
	f.uc.timeProvider = fakeTime{now: now}
	return f
}

func TestExecute_StartConsultation(t *testing.T) {
	f := newFixture(calledEntry(), domain.StatusInQueue)

	resp, err := f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: ActionStart})
	require.NoError(t, err)

	assert.Equal(t, string(domain.QueueStatusInConsultation), resp.Status)
	require.NotNil(t, resp.ConsultationStart)
	assert.Equal(t, now, *resp.ConsultationStart)
	// Чек-ин 09:18, консультация началась в 10:00
	assert.Equal(t, 42, resp.ActualWaitMinutes)

	require.Len(t, f.apts.updates, 1)
	assert.Equal(t, statusUpdate{version: 5, status: domain.StatusInProgress}, f.apts.updates[0])
	assert.False(t, f.queue.recomputed)
}

func TestExecute_CompleteConsultation(t *testing.T) {
	entry := calledEntry()
	entry.Status = domain.QueueStatusInConsultation
	start := now.Add(-20 * time.Minute)
	entry.ConsultationStartTime = &start

	f := newFixture(entry, domain.StatusInProgress)

	resp, err := f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: ActionComplete})
	require.NoError(t, err)

	assert.Equal(t, string(domain.QueueStatusCompleted), resp.Status)
	require.NotNil(t, resp.ConsultationEnd)

	// Средняя длительность консультаций пополняется фактом
	assert.Equal(t, int64(7), f.stats.doctorID)
	assert.Equal(t, 20, f.stats.minutes)

	require.Len(t, f.apts.updates, 1)
	assert.Equal(t, domain.StatusCompleted, f.apts.updates[0].status)
}

func TestExecute_SkipSendsToBackOfQueue(t *testing.T) {
	f := newFixture(calledEntry(), domain.StatusInQueue)

	resp, err := f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: ActionSkip})
	require.NoError(t, err)

	assert.Equal(t, string(domain.QueueStatusWaiting), resp.Status)
	assert.Equal(t, 1, resp.SkipCount)

	// Пропуск обнуляет приоритет и переустанавливает чек-ин: пациент
	// встаёт в конец очереди
	require.NotNil(t, f.queue.updated)
	assert.Equal(t, 0, f.queue.updated.Priority)
	assert.Equal(t, now, f.queue.updated.CheckInTime)
	assert.Nil(t, f.queue.updated.CalledTime)
	assert.True(t, f.queue.recomputed)

	// Статус записи на приём не меняется, пациент всё ещё в очереди
	assert.Empty(t, f.apts.updates)
}

func TestExecute_NoShowClosesAppointment(t *testing.T) {
	f := newFixture(calledEntry(), domain.StatusInQueue)

	resp, err := f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: ActionNoShow})
	require.NoError(t, err)

	assert.Equal(t, string(domain.QueueStatusNoShow), resp.Status)
	assert.True(t, f.queue.recomputed)

	require.Len(t, f.apts.updates, 1)
	assert.Equal(t, domain.StatusNoShow, f.apts.updates[0].status)
}

func TestExecute_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status domain.QueueStatus
		action Action
	}{
		{name: "start from waiting", status: domain.QueueStatusWaiting, action: ActionStart},
		{name: "complete from called", status: domain.QueueStatusCalled, action: ActionComplete},
		{name: "skip from in consultation", status: domain.QueueStatusInConsultation, action: ActionSkip},
		{name: "no show from completed", status: domain.QueueStatusCompleted, action: ActionNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := calledEntry()
			entry.Status = tt.status
			f := newFixture(entry, domain.StatusInQueue)

			_, err := f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: tt.action})
			assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		})
	}
}

func TestExecute_ExpectedVersionMismatch(t *testing.T) {
	f := newFixture(calledEntry(), domain.StatusInQueue)

	_, err := f.uc.Execute(context.Background(), &Request{
		EntryID:         55,
		Action:          ActionStart,
		ExpectedVersion: ptr.Ptr(int64(1)),
	})
	assert.ErrorIs(t, err, ErrStaleWrite)
	assert.Nil(t, f.queue.updated)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(calledEntry(), domain.StatusInQueue)

	_, err := f.uc.Execute(context.Background(), &Request{EntryID: 0, Action: ActionStart})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{EntryID: 55, Action: "teleport"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
