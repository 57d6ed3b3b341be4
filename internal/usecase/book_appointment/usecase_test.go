package book_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/billingservice"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/pkg/ptr"
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

type fakeAptRepo struct {
	existing []*domain.Appointment
	created  *domain.Appointment

	nextSeq   int64
	nextToken int
}

func (f *fakeAptRepo) Create(_ context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	apt.ID = 100
	apt.Version = 1
	apt.CreatedAt = time.Now()
	f.created = apt
	return apt, nil
}

func (f *fakeAptRepo) GetByDoctorAndDate(_ context.Context, _ int64, _ string, _ bool) ([]*domain.Appointment, error) {
	return f.existing, nil
}

func (f *fakeAptRepo) NextTokenNumber(_ context.Context, _ int64, _ string) (int, error) {
	f.nextToken++
	return f.nextToken, nil
}

func (f *fakeAptRepo) NextAppointmentSequence(_ context.Context, _ int) (int64, error) {
	f.nextSeq++
	return f.nextSeq, nil
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
	err     error
	onLeave bool
}

func (f *fakeDoctorClient) GetDoctor(_ context.Context, _ int64) (*doctorservice.Doctor, error) {
	return f.doctor, f.err
}

func (f *fakeDoctorClient) IsOnLeave(_ context.Context, _ int64, _ string) (bool, error) {
	return f.onLeave, nil
}

type fakeBillingClient struct {
	charges []*billingservice.ConsultationCharge
	err     error
}

func (f *fakeBillingClient) EmitConsultationCharge(_ context.Context, charge *billingservice.ConsultationCharge) error {
	if f.err != nil {
		return f.err
	}
	f.charges = append(f.charges, charge)
	return nil
}

type fakeSmsClient struct {
	confirmations int
}

func (f *fakeSmsClient) SendBookingConfirmation(_ context.Context, _, _, _ string) error {
	f.confirmations++
	return nil
}

type fakeSessionStore struct {
	consumeErr error
	consumed   []string
	restored   []*sessionstore.OtpSession
	tokens     map[string]int64
}

func (f *fakeSessionStore) ConsumeVerified(_ context.Context, sessionID, mobile string) (*sessionstore.OtpSession, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.consumed = append(f.consumed, sessionID)
	return &sessionstore.OtpSession{
		ID:        sessionID,
		Mobile:    mobile,
		Verified:  true,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

func (f *fakeSessionStore) PutOtp(_ context.Context, session *sessionstore.OtpSession) error {
	f.restored = append(f.restored, session)
	return nil
}

func (f *fakeSessionStore) PutAccessToken(_ context.Context, token string, appointmentID int64, _ time.Duration) error {
	if f.tokens == nil {
		f.tokens = make(map[string]int64)
	}
	f.tokens[token] = appointmentID
	return nil
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

type fixture struct {
	uc       *UseCase
	aptRepo  *fakeAptRepo
	audit    *fakeAuditRepo
	billing  *fakeBillingClient
	sms      *fakeSmsClient
	sessions *fakeSessionStore
}

func newFixture() *fixture {
	f := &fixture{
		aptRepo:  &fakeAptRepo{},
		audit:    &fakeAuditRepo{},
		billing:  &fakeBillingClient{},
		sms:      &fakeSmsClient{},
		sessions: &fakeSessionStore{},
	}
	f.uc = NewUseCase(
		f.aptRepo,
		&fakeRuleRepo{rules: []*domain.ScheduleRule{mondayRule()}},
		f.audit,
		&fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", ConsultationFee: 500, Active: true}},
		f.billing,
		f.sms,
		f.sessions,
		fakeTxManager{},
		Policy{HospitalID: 1, TokenDisplayPrefix: "OPD", GuestTokenTTL: 24 * time.Hour},
		nopLogger{},
	)
	f.uc.timeProvider = fakeTime{now: testDate.Add(8 * time.Hour)}
	return f
}

func patientRequest() *Request {
	return &Request{
		DoctorID:      7,
		PatientID:     42,
		PatientName:   "Asha Verma",
		PatientMobile: "+919876543210",
		Date:          testDate,
		SlotStart:     "09:30",
		BookingSource: domain.SourceOnline,
	}
}

func TestExecute_BooksSlot(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), patientRequest())
	require.NoError(t, err)

	assert.Equal(t, "APT2026000001", resp.AppointmentNumber)
	assert.Equal(t, 1, resp.TokenNumber)
	assert.Equal(t, "OPD-001", resp.TokenDisplay)
	assert.Equal(t, string(domain.StatusScheduled), resp.Status)
	assert.Equal(t, types.TimeString("09:45"), resp.SlotEnd)
	assert.Equal(t, 500.0, resp.ConsultationFee)
	assert.Empty(t, resp.GuestAccessToken)

	require.NotNil(t, f.aptRepo.created)
	assert.Equal(t, int64(42), f.aptRepo.created.PatientID)

	require.Len(t, f.audit.records, 1)
	assert.Equal(t, domain.AuditActionCreate, f.audit.records[0].Action)
	assert.Equal(t, "patient:42", f.audit.records[0].Actor)

	require.Len(t, f.billing.charges, 1)
	assert.Equal(t, 500.0, f.billing.charges[0].Amount)
	assert.Equal(t, 1, f.sms.confirmations)
}

func TestExecute_SlotAlreadyTaken(t *testing.T) {
	f := newFixture()
	f.aptRepo.existing = []*domain.Appointment{
		{SlotStart: "09:30", Status: domain.StatusConfirmed},
	}

	_, err := f.uc.Execute(context.Background(), patientRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Nil(t, f.aptRepo.created)
	assert.Empty(t, f.audit.records)
}

func TestExecute_SlotOutsideSchedule(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		slot types.TimeString
	}{
		{name: "off the grid", slot: "09:40"},
		{name: "inside break", slot: "11:00"},
		{name: "before window", slot: "08:00"},
		{name: "after window", slot: "13:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := patientRequest()
			req.SlotStart = tt.slot
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrSlotNotInSchedule)
		})
	}
}

func TestExecute_SessionFull(t *testing.T) {
	f := newFixture()
	rule := mondayRule()
	rule.MaxAppointments = 3
	f.uc.ruleRepo = &fakeRuleRepo{rules: []*domain.ScheduleRule{rule}}
	// Внеплановый пациент в 09:05 добирает лимит сессии поверх сетки слотов
	f.aptRepo.existing = []*domain.Appointment{
		{SlotStart: "09:00", Status: domain.StatusScheduled},
		{SlotStart: "09:05", Status: domain.StatusScheduled},
		{SlotStart: "09:15", Status: domain.StatusConfirmed},
	}

	req := patientRequest()
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_GuestBookingConsumesOtp(t *testing.T) {
	f := newFixture()

	req := patientRequest()
	req.PatientID = 0
	req.BookingSource = domain.SourceOnlineGuest
	req.OtpSessionID = "sess-9"

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"sess-9"}, f.sessions.consumed)
	assert.Empty(t, f.sessions.restored)
	require.NotEmpty(t, resp.GuestAccessToken)
	assert.Equal(t, resp.ID, f.sessions.tokens[resp.GuestAccessToken])
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "guest:+919876543210", f.audit.records[0].Actor)
}

func TestExecute_GuestSlotTakenRestoresOtpSession(t *testing.T) {
	f := newFixture()
	f.aptRepo.existing = []*domain.Appointment{
		{SlotStart: "09:30", Status: domain.StatusConfirmed},
	}

	req := patientRequest()
	req.PatientID = 0
	req.BookingSource = domain.SourceOnlineGuest
	req.OtpSessionID = "sess-9"

	_, err := f.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrSlotTaken)

	// Проигранная гонка за слот не сжигает верификацию: сессия вернулась,
	// гость может сразу бронировать другой слот
	assert.Equal(t, []string{"sess-9"}, f.sessions.consumed)
	require.Len(t, f.sessions.restored, 1)
	assert.Equal(t, "sess-9", f.sessions.restored[0].ID)
	assert.True(t, f.sessions.restored[0].Verified)
}

func TestExecute_GuestBookingWithoutOtpSession(t *testing.T) {
	f := newFixture()

	req := patientRequest()
	req.PatientID = 0
	req.BookingSource = domain.SourceOnlineGuest

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_GuestOtpErrors(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{name: "session expired", storeErr: sessionstore.ErrSessionExpired, want: ErrOtpExpired},
		{name: "session not found", storeErr: sessionstore.ErrSessionNotFound, want: ErrOtpExpired},
		{name: "not verified", storeErr: sessionstore.ErrNotVerified, want: ErrOtpMismatch},
		{name: "mobile mismatch", storeErr: sessionstore.ErrMobileMismatch, want: ErrOtpMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.sessions.consumeErr = tt.storeErr

			req := patientRequest()
			req.PatientID = 0
			req.BookingSource = domain.SourceOnlineGuest
			req.OtpSessionID = "sess-9"

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_DoctorUnavailable(t *testing.T) {
	t.Run("inactive doctor", func(t *testing.T) {
		f := newFixture()
		f.uc.doctorClient = &fakeDoctorClient{doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: false}}

		_, err := f.uc.Execute(context.Background(), patientRequest())
		assert.ErrorIs(t, err, ErrDoctorUnavailable)
	})

	t.Run("doctor on leave", func(t *testing.T) {
		f := newFixture()
		f.uc.doctorClient = &fakeDoctorClient{
			doctor:  &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", Active: true},
			onLeave: true,
		}

		_, err := f.uc.Execute(context.Background(), patientRequest())
		assert.ErrorIs(t, err, ErrDoctorUnavailable)
	})

	t.Run("doctor not found", func(t *testing.T) {
		f := newFixture()
		f.uc.doctorClient = &fakeDoctorClient{err: doctorservice.ErrDoctorNotFound}

		_, err := f.uc.Execute(context.Background(), patientRequest())
		assert.ErrorIs(t, err, ErrDoctorNotFound)
	})
}

func TestExecute_TeleconsultationFee(t *testing.T) {
	f := newFixture()
	rule := mondayRule()
	rule.Teleconsultation = true
	f.uc.ruleRepo = &fakeRuleRepo{rules: []*domain.ScheduleRule{rule}}
	f.uc.doctorClient = &fakeDoctorClient{
		doctor: &doctorservice.Doctor{ID: 7, Name: "Dr. Rao", ConsultationFee: 500, TeleconsultationFee: 300, Active: true},
	}

	resp, err := f.uc.Execute(context.Background(), patientRequest())
	require.NoError(t, err)
	assert.True(t, resp.Teleconsultation)
	assert.Equal(t, 300.0, resp.ConsultationFee)
}

func TestExecute_BillingFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.billing.err = billingservice.ErrInternal

	resp, err := f.uc.Execute(context.Background(), patientRequest())
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
}

func TestExecute_UnknownBookingSource(t *testing.T) {
	f := newFixture()
	req := patientRequest()
	req.BookingSource = "CARRIER_PIGEON"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
