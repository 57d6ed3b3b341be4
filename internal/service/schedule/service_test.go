package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/schedulerule"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeRuleRepo struct {
	existing      []*domain.ScheduleRule
	created       *domain.ScheduleRule
	deactivateErr error
	deactivated   []int64
}

func (f *fakeRuleRepo) Create(_ context.Context, rule *domain.ScheduleRule) (*domain.ScheduleRule, error) {
	rule.ID = 33
	rule.CreatedAt = time.Now()
	f.created = rule
	return rule, nil
}

func (f *fakeRuleRepo) GetByID(_ context.Context, _ int64) (*domain.ScheduleRule, error) {
	return nil, ruleRepo.ErrRuleNotFound
}

func (f *fakeRuleRepo) GetByDoctorID(_ context.Context, _ int64, _ bool) ([]*domain.ScheduleRule, error) {
	return f.existing, nil
}

func (f *fakeRuleRepo) Deactivate(_ context.Context, id int64) error {
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeDoctorClient struct {
	err error
}

func (f *fakeDoctorClient) GetDoctor(_ context.Context, id int64) (*doctorservice.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &doctorservice.Doctor{ID: id, Name: "Dr. Rao", Active: true}, nil
}

type fakeAuditRepo struct {
	records []*domain.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *domain.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

func createRequest() *models.CreateRuleRequest {
	return &models.CreateRuleRequest{
		DoctorID:            7,
		DayOfWeek:           ptr.Ptr(1), // понедельник
		StartTime:           "09:00",
		EndTime:             "13:00",
		SlotDurationMinutes: 15,
		MaxAppointments:     16,
	}
}

func newService(rules *fakeRuleRepo, doc *fakeDoctorClient, audit *fakeAuditRepo) *Service {
	return NewService(rules, doc, audit, 1, nopLogger{})
}

func TestAddRule_CreatesRecurringRule(t *testing.T) {
	rules := &fakeRuleRepo{}
	audit := &fakeAuditRepo{}
	svc := newService(rules, &fakeDoctorClient{}, audit)

	resp, err := svc.AddRule(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(33), resp.ID)
	assert.Equal(t, int64(1), resp.HospitalID)
	assert.True(t, resp.Recurring)
	assert.Equal(t, 1, resp.DayOfWeek)
	assert.True(t, resp.Active)

	require.NotNil(t, rules.created)
	assert.Equal(t, time.Monday, rules.created.DayOfWeek)

	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditEntityScheduleRule, audit.records[0].EntityType)
}

func TestAddRule_OneOffRuleFromSpecificDate(t *testing.T) {
	rules := &fakeRuleRepo{}
	svc := newService(rules, &fakeDoctorClient{}, &fakeAuditRepo{})

	req := createRequest()
	req.DayOfWeek = nil
	req.SpecificDate = ptr.Ptr("2026-03-02")

	resp, err := svc.AddRule(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, resp.Recurring)
	require.NotNil(t, rules.created.SpecificDate)
	// День недели выводится из даты
	assert.Equal(t, time.Monday, rules.created.DayOfWeek)
}

func TestAddRule_RejectsOverlap(t *testing.T) {
	existing := &domain.ScheduleRule{
		ID:                  12,
		HospitalID:          1,
		DoctorID:            7,
		DayOfWeek:           time.Monday,
		Recurring:           true,
		StartTime:           "11:00",
		EndTime:             "15:00",
		SlotDurationMinutes: 15,
		MaxAppointments:     16,
		Active:              true,
	}
	rules := &fakeRuleRepo{existing: []*domain.ScheduleRule{existing}}
	svc := newService(rules, &fakeDoctorClient{}, &fakeAuditRepo{})

	_, err := svc.AddRule(context.Background(), createRequest())
	assert.ErrorIs(t, err, ErrScheduleConflict)
	assert.Nil(t, rules.created)
}

func TestAddRule_AdjacentWindowsAllowed(t *testing.T) {
	existing := &domain.ScheduleRule{
		ID:                  12,
		HospitalID:          1,
		DoctorID:            7,
		DayOfWeek:           time.Monday,
		Recurring:           true,
		StartTime:           "13:00",
		EndTime:             "17:00",
		SlotDurationMinutes: 15,
		MaxAppointments:     16,
		Active:              true,
	}
	rules := &fakeRuleRepo{existing: []*domain.ScheduleRule{existing}}
	svc := newService(rules, &fakeDoctorClient{}, &fakeAuditRepo{})

	_, err := svc.AddRule(context.Background(), createRequest())
	assert.NoError(t, err)
}

func TestAddRule_DoctorNotFound(t *testing.T) {
	svc := newService(&fakeRuleRepo{}, &fakeDoctorClient{err: doctorservice.ErrDoctorNotFound}, &fakeAuditRepo{})

	_, err := svc.AddRule(context.Background(), createRequest())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestAddRule_InvalidRule(t *testing.T) {
	svc := newService(&fakeRuleRepo{}, &fakeDoctorClient{}, &fakeAuditRepo{})

	req := createRequest()
	req.EndTime = "08:00"

	_, err := svc.AddRule(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListEffective_FiltersByDate(t *testing.T) {
	monday := &domain.ScheduleRule{
		ID: 1, HospitalID: 1, DoctorID: 7, DayOfWeek: time.Monday, Recurring: true,
		StartTime: "09:00", EndTime: "13:00", SlotDurationMinutes: 15, MaxAppointments: 16, Active: true,
	}
	tuesday := &domain.ScheduleRule{
		ID: 2, HospitalID: 1, DoctorID: 7, DayOfWeek: time.Tuesday, Recurring: true,
		StartTime: "09:00", EndTime: "13:00", SlotDurationMinutes: 15, MaxAppointments: 16, Active: true,
	}
	rules := &fakeRuleRepo{existing: []*domain.ScheduleRule{monday, tuesday}}
	svc := newService(rules, &fakeDoctorClient{}, &fakeAuditRepo{})

	resp, err := svc.ListEffective(context.Background(), 7, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, int64(1), resp.Rules[0].ID)
}

func TestDeactivate(t *testing.T) {
	t.Run("deactivates rule and writes audit", func(t *testing.T) {
		rules := &fakeRuleRepo{}
		audit := &fakeAuditRepo{}
		svc := newService(rules, &fakeDoctorClient{}, audit)

		require.NoError(t, svc.Deactivate(context.Background(), 33))
		assert.Equal(t, []int64{33}, rules.deactivated)
		require.Len(t, audit.records, 1)
		assert.Equal(t, domain.AuditActionStatusTransition, audit.records[0].Action)
	})

	t.Run("rule not found", func(t *testing.T) {
		rules := &fakeRuleRepo{deactivateErr: ruleRepo.ErrRuleNotFound}
		svc := newService(rules, &fakeDoctorClient{}, &fakeAuditRepo{})

		assert.ErrorIs(t, svc.Deactivate(context.Background(), 404), ErrRuleNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := newService(&fakeRuleRepo{}, &fakeDoctorClient{}, &fakeAuditRepo{})
		assert.ErrorIs(t, svc.Deactivate(context.Background(), 0), ErrInvalidInput)
	})
}
