package call_next

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
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

type fakeQueueRepo struct {
	next       *domain.QueueEntry
	nextErr    error
	updateErr  error
	updated    *domain.QueueEntry
	recomputed bool
}

func (f *fakeQueueRepo) GetNextWaiting(_ context.Context, _ int64, _ string) (*domain.QueueEntry, error) {
	return f.next, f.nextErr
}

func (f *fakeQueueRepo) Update(_ context.Context, entry *domain.QueueEntry) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = entry
	return nil
}

func (f *fakeQueueRepo) RecomputePositions(_ context.Context, _ int64, _ string) error {
	f.recomputed = true
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
	today   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	callNow = today.Add(10 * time.Hour)
)

func waitingEntry() *domain.QueueEntry {
	return &domain.QueueEntry{
		ID:            55,
		HospitalID:    1,
		DoctorID:      7,
		AppointmentID: 10,
		PatientName:   "Asha Verma",
		QueueDate:     today,
		TokenNumber:   4,
		TokenDisplay:  "OPD-004",
		Status:        domain.QueueStatusWaiting,
		Position:      1,
		CheckInTime:   today.Add(9 * time.Hour),
		Version:       1,
	}
}

func newCallNextUseCase(queue *fakeQueueRepo, audit *fakeAuditRepo) *UseCase {
	uc := NewUseCase(queue, audit, fakeTxManager{}, nopLogger{})
	uc.timeProvider = fakeTime{now: callNow}
	return uc
}

func TestExecute_CallsNextWaiting(t *testing.T) {
	queue := &fakeQueueRepo{next: waitingEntry()}
	audit := &fakeAuditRepo{}
	uc := newCallNextUseCase(queue, audit)

	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: today})
	require.NoError(t, err)

	assert.Equal(t, int64(55), resp.EntryID)
	assert.Equal(t, "OPD-004", resp.TokenDisplay)
	assert.Equal(t, string(domain.QueueStatusCalled), resp.Status)
	assert.Equal(t, callNow, resp.CalledTime)

	require.NotNil(t, queue.updated)
	assert.Equal(t, domain.QueueStatusCalled, queue.updated.Status)
	require.NotNil(t, queue.updated.CalledTime)
	assert.Equal(t, callNow, *queue.updated.CalledTime)
	assert.True(t, queue.recomputed)

	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditActionStatusTransition, audit.records[0].Action)
}

func TestExecute_QueueEmpty(t *testing.T) {
	queue := &fakeQueueRepo{nextErr: queueRepo.ErrQueueEmpty}
	uc := newCallNextUseCase(queue, &fakeAuditRepo{})

	_, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: today})
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestExecute_ConcurrentCall(t *testing.T) {
	queue := &fakeQueueRepo{next: waitingEntry(), updateErr: queueRepo.ErrStaleWrite}
	uc := newCallNextUseCase(queue, &fakeAuditRepo{})

	_, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: today})
	assert.ErrorIs(t, err, ErrStaleWrite)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newCallNextUseCase(&fakeQueueRepo{}, &fakeAuditRepo{})

	_, err := uc.Execute(context.Background(), &Request{DoctorID: 0, Date: today})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{DoctorID: 7})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
