package send_otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeSessionStore struct {
	putErr error
	stored *sessionstore.OtpSession
}

func (f *fakeSessionStore) PutOtp(_ context.Context, session *sessionstore.OtpSession) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.stored = session
	return nil
}

type fakeSmsClient struct {
	sendErr error
	sent    []string
}

func (f *fakeSmsClient) SendOtp(_ context.Context, mobile, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, mobile)
	return nil
}

type fakeTime struct{ now time.Time }

func (f fakeTime) Now() time.Time { return f.now }

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newSendOtpUseCase(store *fakeSessionStore, sms *fakeSmsClient, devMode bool) *UseCase {
	uc := NewUseCase(store, sms, Policy{TTL: 5 * time.Minute, Region: "IN", DevMode: devMode}, nopLogger{})
	uc.timeProvider = fakeTime{now: now}
	return uc
}

func TestExecute_SendsOtpSms(t *testing.T) {
	store := &fakeSessionStore{}
	sms := &fakeSmsClient{}
	uc := newSendOtpUseCase(store, sms, false)

	resp, err := uc.Execute(context.Background(), &Request{Mobile: "+919876543210"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "+919876543210", resp.Mobile)
	assert.Equal(t, now.Add(5*time.Minute), resp.ExpiresAt)
	assert.Empty(t, resp.DevCode)

	require.NotNil(t, store.stored)
	assert.Equal(t, resp.SessionID, store.stored.ID)
	assert.Len(t, store.stored.Code, 6)
	assert.False(t, store.stored.Verified)

	assert.Equal(t, []string{"+919876543210"}, sms.sent)
}

func TestExecute_NormalizesNationalFormat(t *testing.T) {
	store := &fakeSessionStore{}
	uc := newSendOtpUseCase(store, &fakeSmsClient{}, true)

	resp, err := uc.Execute(context.Background(), &Request{Mobile: "98765 43210"})
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", resp.Mobile)
}

func TestExecute_InvalidMobile(t *testing.T) {
	uc := newSendOtpUseCase(&fakeSessionStore{}, &fakeSmsClient{}, false)

	for _, mobile := range []string{"", "12345", "not-a-number"} {
		t.Run(mobile, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &Request{Mobile: mobile})
			assert.ErrorIs(t, err, ErrInvalidMobile)
		})
	}
}

func TestExecute_DevModeSkipsSms(t *testing.T) {
	store := &fakeSessionStore{}
	sms := &fakeSmsClient{}
	uc := newSendOtpUseCase(store, sms, true)

	resp, err := uc.Execute(context.Background(), &Request{Mobile: "+919876543210"})
	require.NoError(t, err)

	assert.Equal(t, store.stored.Code, resp.DevCode)
	assert.Empty(t, sms.sent)
}

func TestExecute_SmsFailureFailsRequest(t *testing.T) {
	sms := &fakeSmsClient{sendErr: errors.New("gateway down")}
	uc := newSendOtpUseCase(&fakeSessionStore{}, sms, false)

	_, err := uc.Execute(context.Background(), &Request{Mobile: "+919876543210"})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_StoreFailureFailsRequest(t *testing.T) {
	store := &fakeSessionStore{putErr: errors.New("store down")}
	uc := newSendOtpUseCase(store, &fakeSmsClient{}, false)

	_, err := uc.Execute(context.Background(), &Request{Mobile: "+919876543210"})
	assert.ErrorIs(t, err, ErrInternal)
}
