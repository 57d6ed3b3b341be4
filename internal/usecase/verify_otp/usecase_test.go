package verify_otp

import (
	"context"
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
	session *sessionstore.OtpSession
	getErr  error
	updated *sessionstore.OtpSession
}

func (f *fakeSessionStore) GetOtp(_ context.Context, _ string) (*sessionstore.OtpSession, error) {
	return f.session, f.getErr
}

func (f *fakeSessionStore) UpdateOtp(_ context.Context, session *sessionstore.OtpSession) error {
	f.updated = session
	return nil
}

func validSession() *sessionstore.OtpSession {
	return &sessionstore.OtpSession{
		ID:        "sess-1",
		Mobile:    "+919876543210",
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Minute),
	}
}

func validRequest() *Request {
	return &Request{SessionID: "sess-1", Mobile: "+919876543210", Code: "123456"}
}

func TestExecute_VerifiesSession(t *testing.T) {
	store := &fakeSessionStore{session: validSession()}
	uc := NewUseCase(store, nopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "sess-1", resp.SessionID)
	assert.True(t, resp.Verified)

	require.NotNil(t, store.updated)
	assert.True(t, store.updated.Verified)
}

func TestExecute_WrongCodeIncrementsAttempts(t *testing.T) {
	store := &fakeSessionStore{session: validSession()}
	uc := NewUseCase(store, nopLogger{})

	req := validRequest()
	req.Code = "000000"

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOtpMismatch)

	require.NotNil(t, store.updated)
	assert.Equal(t, 1, store.updated.Attempts)
	assert.False(t, store.updated.Verified)
}

func TestExecute_ExhaustedAttemptsBurnSession(t *testing.T) {
	session := validSession()
	session.Attempts = MaxAttempts
	store := &fakeSessionStore{session: session}
	uc := NewUseCase(store, nopLogger{})

	// Даже правильный код не проходит после пяти неудач
	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestExecute_MobileMismatch(t *testing.T) {
	store := &fakeSessionStore{session: validSession()}
	uc := NewUseCase(store, nopLogger{})

	req := validRequest()
	req.Mobile = "+911111111111"

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOtpMismatch)
	assert.Nil(t, store.updated)
}

func TestExecute_SessionExpiredOrMissing(t *testing.T) {
	for _, storeErr := range []error{sessionstore.ErrSessionExpired, sessionstore.ErrSessionNotFound} {
		t.Run(storeErr.Error(), func(t *testing.T) {
			store := &fakeSessionStore{getErr: storeErr}
			uc := NewUseCase(store, nopLogger{})

			_, err := uc.Execute(context.Background(), validRequest())
			assert.ErrorIs(t, err, ErrOtpExpired)
		})
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeSessionStore{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "empty session id", mutate: func(r *Request) { r.SessionID = "" }},
		{name: "empty mobile", mutate: func(r *Request) { r.Mobile = "" }},
		{name: "empty code", mutate: func(r *Request) { r.Code = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
