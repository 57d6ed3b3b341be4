package check_in

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	queueRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/queueentry"
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

type statusUpdate struct {
	version int64
	status  domain.AppointmentStatus
}

type fakeAptRepo struct {
	apt       *domain.Appointment
	getErr    error
	updateErr error
	updates   []statusUpdate
}

func (f *fakeAptRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	return f.apt, f.getErr
}

func (f *fakeAptRepo) UpdateStatus(_ context.Context, _, version int64, status domain.AppointmentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, statusUpdate{version: version, status: status})
	return nil
}

type fakeQueueRepo struct {
	createErr  error
	created    *domain.QueueEntry
	position   int
	updated    *domain.QueueEntry
	recomputed bool
}

func (f *fakeQueueRepo) Create(_ context.Context, entry *domain.QueueEntry) (*domain.QueueEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	entry.ID = 55
	entry.Version = 1
	f.created = entry
	return entry, nil
}

func (f *fakeQueueRepo) GetByAppointmentID(_ context.Context, _ int64) (*domain.QueueEntry, error) {
	entry := *f.created
	entry.Position = f.position
	return &entry, nil
}

func (f *fakeQueueRepo) Update(_ context.Context, entry *domain.QueueEntry) error {
	f.updated = entry
	return nil
}

func (f *fakeQueueRepo) RecomputePositions(_ context.Context, _ int64, _ string) error {
	f.recomputed = true
	return nil
}

type fakeStatsRepo struct {
	avg int
}

func (f *fakeStatsRepo) AvgConsultationMinutes(_ context.Context, _ int64) (int, error) {
	return f.avg, nil
}

type fakeAuditRepo struct {
	records []*domain.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *domain.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func confirmedAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:            10,
		HospitalID:    1,
		DoctorID:      7,
		PatientID:     42,
		PatientName:   "Asha Verma",
		Date:          today,
		SlotStart:     "09:30",
		Status:        domain.StatusConfirmed,
		TokenNumber:   4,
		Version:       3,
	}
}

type fixture struct {
	uc    *UseCase
	apts  *fakeAptRepo
	queue *fakeQueueRepo
	stats *fakeStatsRepo
	audit *fakeAuditRepo
}

func newFixture() *fixture {
	f := &fixture{
		apts:  &fakeAptRepo{apt: confirmedAppointment()},
		queue: &fakeQueueRepo{position: 3},
		stats: &fakeStatsRepo{avg: 15},
		audit: &fakeAuditRepo{},
	}
	f.uc = NewUseCase(
		f.apts,
		f.queue,
		f.stats,
		f.audit,
		fakeTxManager{},
		Policy{HospitalID: 1, TokenDisplayPrefix: "OPD"},
		nopLogger{},
	)
	f.uc.timeProvider = fakeTime{now: today.Add(9 * time.Hour)}
	return f
}

func TestExecute_ChecksInConfirmedAppointment(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(55), resp.EntryID)
	assert.Equal(t, "OPD-004", resp.TokenDisplay)
	assert.Equal(t, 3, resp.Position)
	assert.Equal(t, string(domain.QueueStatusWaiting), resp.Status)
	// Позиция 3 при среднем приёме 15 минут = два пациента впереди
	assert.Equal(t, 30, resp.EstimatedWaitMinutes)

	// Запись проходит checked_in и in_queue с последовательными версиями
	require.Len(t, f.apts.updates, 2)
	assert.Equal(t, statusUpdate{version: 3, status: domain.StatusCheckedIn}, f.apts.updates[0])
	assert.Equal(t, statusUpdate{version: 4, status: domain.StatusInQueue}, f.apts.updates[1])

	assert.True(t, f.queue.recomputed)
	require.NotNil(t, f.queue.updated)
	assert.Equal(t, 30, f.queue.updated.EstimatedWaitMinutes)

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, domain.AuditEntityQueueEntry, f.audit.records[0].EntityType)
}

func TestExecute_FirstInQueueHasNoWait(t *testing.T) {
	f := newFixture()
	f.queue.position = 1

	resp, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.EstimatedWaitMinutes)
}

func TestExecute_WrongDay(t *testing.T) {
	f := newFixture()
	f.apts.apt.Date = today.AddDate(0, 0, 1)

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
	assert.ErrorIs(t, err, ErrWrongDay)
	assert.Empty(t, f.apts.updates)
}

func TestExecute_StatusDoesNotAllowCheckIn(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.StatusInQueue,
		domain.StatusCompleted,
		domain.StatusCancelledByPatient,
		domain.StatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.apts.apt.Status = status

			_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
			assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		})
	}
}

func TestExecute_AlreadyCheckedIn(t *testing.T) {
	f := newFixture()
	f.queue.createErr = queueRepo.ErrDuplicateEntry

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestExecute_AppointmentNotFound(t *testing.T) {
	f := newFixture()
	f.apts.apt = nil
	f.apts.getErr = aptRepo.ErrAppointmentNotFound

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 404})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_ConcurrentModification(t *testing.T) {
	f := newFixture()
	f.apts.updateErr = aptRepo.ErrStaleWrite

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 10})
	assert.ErrorIs(t, err, ErrStaleWrite)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{AppointmentID: 10, Priority: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
