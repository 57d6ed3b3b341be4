package verify_otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
)

// UseCase use case проверки OTP кода
type UseCase struct {
	sessions SessionStore
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(sessions SessionStore, logger Logger) *UseCase {
	return &UseCase{
		sessions: sessions,
		logger:   logger,
	}
}

// Execute выполняет use case проверки OTP.
// Успешная проверка помечает сессию verified; потребляет её уже бронирование.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("VerifyOtp: session=%s", req.SessionID)

	// 1. Валидация входных данных
	if req.SessionID == "" || req.Mobile == "" || req.Code == "" {
		uc.logger.Warn("VerifyOtp: missing session id, mobile or code")
		return nil, fmt.Errorf("%w: session id, mobile and code are required", ErrInvalidInput)
	}

	// 2. Загружаем сессию
	session, err := uc.sessions.GetOtp(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrSessionNotFound) || errors.Is(err, sessionstore.ErrSessionExpired) {
			uc.logger.Warn("VerifyOtp: session %s expired or not found", req.SessionID)
			return nil, ErrOtpExpired
		}
		uc.logger.Error("VerifyOtp: failed to get session %s: %v", req.SessionID, err)
		return nil, fmt.Errorf("%w: failed to get session: %v", ErrInternal, err)
	}

	// 3. Исчерпанные попытки сжигают сессию
	if session.Attempts >= MaxAttempts {
		uc.logger.Warn("VerifyOtp: session %s exceeded %d attempts", req.SessionID, MaxAttempts)
		return nil, ErrOtpExpired
	}

	// 4. Сверяем номер и код
	if session.Mobile != req.Mobile {
		uc.logger.Warn("VerifyOtp: mobile mismatch for session %s", req.SessionID)
		return nil, ErrOtpMismatch
	}

	if subtle.ConstantTimeCompare([]byte(session.Code), []byte(req.Code)) != 1 {
		session.Attempts++
		if err := uc.sessions.UpdateOtp(ctx, session); err != nil {
			uc.logger.Error("VerifyOtp: failed to record failed attempt for session %s: %v", req.SessionID, err)
		}
		uc.logger.Warn("VerifyOtp: wrong code for session %s, attempt %d/%d",
			req.SessionID, session.Attempts, MaxAttempts)
		return nil, ErrOtpMismatch
	}

	// 5. Помечаем сессию подтверждённой
	session.Verified = true
	if err := uc.sessions.UpdateOtp(ctx, session); err != nil {
		uc.logger.Error("VerifyOtp: failed to mark session %s verified: %v", req.SessionID, err)
		return nil, fmt.Errorf("%w: failed to mark session verified: %v", ErrInternal, err)
	}

	uc.logger.Info("VerifyOtp: session %s verified", req.SessionID)

	return &Response{
		SessionID: req.SessionID,
		Verified:  true,
	}, nil
}
