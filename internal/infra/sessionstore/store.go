package sessionstore

import (
	"context"
	"time"
)

// OtpSession одна OTP сессия верификации номера телефона.
// Живёт от отправки кода до подтверждения бронирования, после чего удаляется.
type OtpSession struct {
	ID        string
	Mobile    string
	Code      string
	Verified  bool
	Attempts  int
	ExpiresAt time.Time
}

// IsExpired returns true if the session TTL has passed at the given moment
func (s *OtpSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store хранилище OTP сессий и гостевых токенов доступа.
// Реализации: in-memory (dev, single instance) и Redis (prod, несколько инстансов).
type Store interface {
	// PutOtp сохраняет новую OTP сессию
	PutOtp(ctx context.Context, session *OtpSession) error

	// GetOtp возвращает сессию по ID; ErrSessionExpired для просроченных
	GetOtp(ctx context.Context, sessionID string) (*OtpSession, error)

	// UpdateOtp перезаписывает сессию (отметка verified, счётчик попыток)
	UpdateOtp(ctx context.Context, session *OtpSession) error

	// ConsumeVerified атомарно проверяет, что сессия подтверждена и привязана
	// к данному номеру, и удаляет её, возвращая снятую сессию. Повторное
	// использование сессии невозможно; если бронирование после снятия не
	// состоялось, вызывающая сторона возвращает сессию через PutOtp.
	ConsumeVerified(ctx context.Context, sessionID, mobile string) (*OtpSession, error)

	// PutAccessToken сохраняет гостевой токен доступа к записи на приём
	PutAccessToken(ctx context.Context, token string, appointmentID int64, ttl time.Duration) error

	// GetAccessToken возвращает ID записи по гостевому токену
	GetAccessToken(ctx context.Context, token string) (int64, error)
}
