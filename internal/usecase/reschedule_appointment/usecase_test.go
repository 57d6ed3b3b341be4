package reschedule_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
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
	original *domain.Appointment
	existing []*domain.Appointment

	updateErr error
	updates   []statusUpdate
	created   *domain.Appointment

	nextSeq   int64
	nextToken int
}

func (f *fakeAptRepo) GetByID(_ context.Context, _ int64) (*domain.Appointment, error) {
	if f.original == nil {
		return nil, aptRepo.ErrAppointmentNotFound
	}
	return f.original, nil
}

func (f *fakeAptRepo) GetByDoctorAndDate(_ context.Context, _ int64, _ string, _ bool) ([]*domain.Appointment, error) {
	return f.existing, nil
}

func (f *fakeAptRepo) UpdateStatus(_ context.Context, _, version int64, status domain.AppointmentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, statusUpdate{version: version, status: status})
	return nil
}

func (f *fakeAptRepo) Create(_ context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	apt.ID = 200
	apt.Version = 1
	apt.CreatedAt = time.Now()
	f.created = apt
	return apt, nil
}

func (f *fakeAptRepo) NextTokenNumber(_ context.Context, _ int64, _ string) (int, error) {
	f.nextToken++
	return f.nextToken, nil
}

func (f *fakeAptRepo) NextAppointmentSequence(_ context.Context, _ int) (int64, error) {
	f.nextSeq++
	return f.nextSeq + 41, nil
}

type fakeRuleRepo struct {
	rules []*domain.ScheduleRule
}

func (f *fakeRuleRepo) GetByDoctorID(_ context.Context, _ int64, _ bool) ([]*domain.ScheduleRule, error) {
	return f.rules, nil
}

type fakeAuditRepo struct {
	records []*domain.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *domain.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

type fakeDoctorClient struct {
	doctor  *doctorservice.Doctor
	onLeave bool
}

func (f *fakeDoctorClient) GetDoctor(_ context.Context, _ int64) (*doctorservice.Doctor, error) {
	return f.doctor, nil
}

func (f *fakeDoctorClient) IsOnLeave(_ context.Context, _ int64, _ string) (bool, error) {
	return f.onLeave, nil
}

var (
	// Понедельники двух соседних недель
	oldDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	newDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
)

func mondayRule() *domain.ScheduleRule {
	return &domain.ScheduleRule{
		ID:                  1,
		HospitalID:          1,
		DoctorID:            7,
		DayOfWeek:           time.Monday,
		Recurring:           true,
		StartTime:           "09:00",
		EndTime:             "13:00",
		SlotDurationMinutes: 15,
		MaxAppointments:     50,
		Active:              true,
	}
}

func originalAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:                10,
		AppointmentNumber: "APT2026000010",
		HospitalID:        1,
		DoctorID:          7,
		PatientID:         42,
		PatientName:       "Asha Verma",
		PatientMobile:     "+919876543210",
		Date:              oldDate,
		SlotStart:         "09:30",
		SlotEnd:           "09:45",
		Status:            domain.StatusScheduled,
		TokenNumber:       4,
		BookingSource:     domain.SourceOnline,
		RescheduleCount:   0,
		Version:           2,
	}
}

type fixture struct {
	uc    *UseCase
	apts  *fakeAptRepo
	audit *fakeAuditRepo
}

func newFixture() *fixture {
	f := &fixture{
		apts:  &fakeAptRepo{original: originalAppointment()},
		audit: &fakeAuditRepo{},
	}
	f.uc = NewUseCase(
		f.apts,
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		f.audit,
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", ConsultationFee: 500, Active: true}},
		fakeTxManager{},
		Policy{HospitalID: 1, MaxReschedules: 3, TokenDisplayPrefix: "OPD"},
		nopLogger{},
	)
	f.uc.timeProvider = fakeTime{now: oldDate.Add(8 * time.Hour)}
	return f
}

func rescheduleRequest() *Request {
	return &Request{
		AppointmentID:  10,
		ActorPatientID: 42,
		NewDate:        newDate,
		NewSlotStart:   "10:00",
	}
}

func TestExecute_ReschedulesToNewSlot(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), rescheduleRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(200), resp.ID)
	assert.Equal(t, "APT2026000042", resp.AppointmentNumber)
	assert.Equal(t, newDate, resp.Date)
	assert.Equal(t, types.TimeString("10:00"), resp.SlotStart)
	assert.Equal(t, types.TimeString("10:15"), resp.SlotEnd)
	assert.Equal(t, 1, resp.RescheduleCount)
	assert.Equal(t, int64(10), resp.PreviousAppointmentID)

	// Старая запись закрывается CAS'ом по прочитанной версии
	require.Len(t, f.apts.updates, 1)
	assert.Equal(t, statusUpdate{version: 2, status: domain.StatusRescheduled}, f.apts.updates[0])

	require.NotNil(t, f.apts.created)
	require.NotNil(t, f.apts.created.PreviousAppointmentID)
	assert.Equal(t, int64(10), *f.apts.created.PreviousAppointmentID)

	// Аудит по обеим записям: закрытие старой и создание новой
	require.Len(t, f.audit.records, 2)
	assert.Equal(t, domain.AuditActionReschedule, f.audit.records[0].Action)
	assert.Equal(t, domain.AuditActionCreate, f.audit.records[1].Action)
	assert.Equal(t, "patient:42", f.audit.records[0].Actor)
}

func TestExecute_RescheduleLimitExceeded(t *testing.T) {
	f := newFixture()
	f.apts.original.RescheduleCount = 3

	_, err := f.uc.Execute(context.Background(), rescheduleRequest())
	assert.ErrorIs(t, err, ErrRescheduleLimitExceeded)
	assert.Empty(t, f.apts.updates)
}

func TestExecute_ForbiddenForAnotherPatient(t *testing.T) {
	f := newFixture()

	req := rescheduleRequest()
	req.ActorPatientID = 99

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecute_StaffCanRescheduleAnyAppointment(t *testing.T) {
	f := newFixture()

	req := rescheduleRequest()
	req.ActorPatientID = 0

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "staff", f.audit.records[0].Actor)
	assert.Equal(t, 1, resp.RescheduleCount)
}

func TestExecute_StatusDoesNotAllowReschedule(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.StatusCheckedIn,
		domain.StatusInQueue,
		domain.StatusCompleted,
		domain.StatusCancelledByPatient,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.apts.original.Status = status

			_, err := f.uc.Execute(context.Background(), rescheduleRequest())
			assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		})
	}
}

func TestExecute_NewSlotTaken(t *testing.T) {
	f := newFixture()
	f.apts.existing = []*domain.Appointment{
		{ID: 11, SlotStart: "10:00", Status: domain.StatusScheduled},
	}

	_, err := f.uc.Execute(context.Background(), rescheduleRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_OwnSlotDoesNotBlockSameDayMove(t *testing.T) {
	f := newFixture()
	// Перенос в рамках того же дня: собственный слот записи не считается занятым
	f.apts.existing = []*domain.Appointment{f.apts.original}

	req := rescheduleRequest()
	req.NewDate = oldDate
	req.NewSlotStart = "11:00"

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("11:00"), resp.SlotStart)
}

func TestExecute_NewSlotOutsideSchedule(t *testing.T) {
	f := newFixture()

	req := rescheduleRequest()
	req.NewSlotStart = "14:00"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotInSchedule)
}

func TestExecute_DoctorOnLeaveOnNewDate(t *testing.T) {
	f := newFixture()
	f.uc.doctorClient = &fakeDoctorClient{
		doctor:  &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true},
		onLeave: true,
	}

	_, err := f.uc.Execute(context.Background(), rescheduleRequest())
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestExecute_ConcurrentModification(t *testing.T) {
	f := newFixture()
	f.apts.updateErr = aptRepo.ErrStaleWrite

	_, err := f.uc.Execute(context.Background(), rescheduleRequest())
	assert.ErrorIs(t, err, ErrStaleWrite)
}

func TestExecute_AppointmentNotFound(t *testing.T) {
	f := newFixture()
	f.apts.original = nil

	_, err := f.uc.Execute(context.Background(), rescheduleRequest())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "zero appointment id", mutate: func(r *Request) { r.AppointmentID = 0 }},
		{name: "zero date", mutate: func(r *Request) { r.NewDate = time.Time{} }},
		{name: "bad slot format", mutate: func(r *Request) { r.NewSlotStart = "9:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := rescheduleRequest()
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
