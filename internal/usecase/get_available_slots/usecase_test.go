package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeRuleRepo struct {
	rules []*domain.ScheduleRule
	err   error
}

func (f *fakeRuleRepo) GetByDoctorID(_ context.Context, _ int64, _ bool) ([]*domain.ScheduleRule, error) {
	return f.rules, f.err
}

type fakeAptRepo struct {
	appointments []*domain.Appointment
	err          error
}

func (f *fakeAptRepo) GetByDoctorAndDate(_ context.Context, _ int64, _ string, _ bool) ([]*domain.Appointment, error) {
	return f.appointments, f.err
}

type fakeDoctorClient struct {
	doctor     *doctorservice.Doctor
	doctorErr  error
	onLeave    bool
	onLeaveErr error
}

func (f *fakeDoctorClient) GetDoctor(_ context.Context, _ int64) (*doctorservice.Doctor, error) {
	return f.doctor, f.doctorErr
}

func (f *fakeDoctorClient) IsOnLeave(_ context.Context, _ int64, _ string) (bool, error) {
	return f.onLeave, f.onLeaveErr
}

// Понедельник
var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func mondayRule() *domain.ScheduleRule {
	return &domain.ScheduleRule{
		ID:                  1,
		HospitalID:          1,
		DoctorID:            7,
		DayOfWeek:           time.Monday,
		Recurring:           true,
		StartTime:           "09:00",
		EndTime:             "13:00",
		BreakStart:          ptr.Ptr(types.TimeString("11:00")),
		BreakEnd:            ptr.Ptr(types.TimeString("11:30")),
		SlotDurationMinutes: 15,
		MaxAppointments:     50,
		Active:              true,
	}
}

func newSlotsUseCase(rules *fakeRuleRepo, apts *fakeAptRepo, doc *fakeDoctorClient) *UseCase {
	return NewUseCase(rules, apts, doc, nopLogger{})
}

func TestExecute_GeneratesSlotGrid(t *testing.T) {
	uc := newSlotsUseCase(
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		&fakeAptRepo{},
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true}},
	)

	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: testDate})
	require.NoError(t, err)

	// 09:00-13:00 c шагом 15 минут = 16 слотов, перерыв 11:00-11:30 съедает два
	require.Len(t, resp.Slots, 14)
	assert.Equal(t, "Dr. Rao", resp.DoctorName)
	assert.False(t, resp.OnLeave)

	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("09:15"), resp.Slots[0].EndTime)

	starts := make(map[types.TimeString]bool)
	for _, slot := range resp.Slots {
		starts[slot.StartTime] = true
		assert.True(t, slot.Available)
		assert.Equal(t, 15, slot.DurationMinutes)
	}
	assert.False(t, starts["11:00"], "slot inside break must not exist")
	assert.False(t, starts["11:15"], "slot inside break must not exist")
	assert.True(t, starts["10:45"], "slot ending at break start must exist")
	assert.True(t, starts["11:30"], "slot starting at break end must exist")
	assert.True(t, starts["12:45"], "last slot of the window must exist")
}

func TestExecute_MarksOccupiedSlots(t *testing.T) {
	uc := newSlotsUseCase(
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		&fakeAptRepo{appointments: []*domain.Appointment{
			{SlotStart: "09:30", Status: domain.StatusScheduled},
			{SlotStart: "10:00", Status: domain.StatusCancelledByPatient},
		}},
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true}},
	)

	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: testDate})
	require.NoError(t, err)

	bySlot := make(map[types.TimeString]bool)
	for _, slot := range resp.Slots {
		bySlot[slot.StartTime] = slot.Available
	}
	assert.False(t, bySlot["09:30"], "active appointment occupies its slot")
	assert.True(t, bySlot["10:00"], "cancelled appointment frees its slot")
}

func TestExecute_MaxAppointmentsCapsSlots(t *testing.T) {
	rule := mondayRule()
	rule.BreakStart = nil
	rule.BreakEnd = nil
	rule.MaxAppointments = 5

	uc := newSlotsUseCase(
		&fakeRuleRepo{rules: []*domain.ScheduleRule{rule}},
		&fakeAptRepo{},
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true}},
	)

	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: testDate})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 5)
}

func TestExecute_DoctorOnLeave(t *testing.T) {
	uc := newSlotsUseCase(
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		&fakeAptRepo{},
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true}, onLeave: true},
	)

	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: testDate})
	require.NoError(t, err)
	assert.True(t, resp.OnLeave)
	assert.Empty(t, resp.Slots)
}

func TestExecute_RuleNotApplyingProducesNoSlots(t *testing.T) {
	uc := newSlotsUseCase(
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		&fakeAptRepo{},
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true}},
	)

	tuesday := testDate.AddDate(0, 0, 1)
	resp, err := uc.Execute(context.Background(), &Request{DoctorID: 7, Date: tuesday})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_DoctorNotFound(t *testing.T) {
	uc := newSlotsUseCase(
		&fakeRuleRepo{},
		&fakeAptRepo{},
		&fakeDoctorClient{doctorErr: doctorservice.ErrDoctorNotFound},
	)

	_, err := uc.Execute(context.Background(), &Request{DoctorID: 404, Date: testDate})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestExecute_InvalidRequest(t *testing.T) {
	uc := newSlotsUseCase(&fakeRuleRepo{}, &fakeAptRepo{}, &fakeDoctorClient{})

	_, err := uc.Execute(context.Background(), &Request{DoctorID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
