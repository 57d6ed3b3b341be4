package send_otp

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
)

// SessionStore интерфейс хранилища OTP сессий
type SessionStore interface {
	PutOtp(ctx context.Context, session *sessionstore.OtpSession) error
}

// SmsGatewayClient интерфейс клиента SMS шлюза
type SmsGatewayClient interface {
	SendOtp(ctx context.Context, mobile, code string) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
