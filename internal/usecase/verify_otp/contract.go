package verify_otp

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
)

// SessionStore интерфейс хранилища OTP сессий
type SessionStore interface {
	GetOtp(ctx context.Context, sessionID string) (*sessionstore.OtpSession, error)
	UpdateOtp(ctx context.Context, session *sessionstore.OtpSession) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
