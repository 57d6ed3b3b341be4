package send_otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
)

// UseCase use case отправки OTP кода для гостевого бронирования
type UseCase struct {
	sessions     SessionStore
	smsClient    SmsGatewayClient
	timeProvider TimeProvider
	policy       Policy
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessions SessionStore,
	smsClient SmsGatewayClient,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		sessions:     sessions,
		smsClient:    smsClient,
		timeProvider: &RealTimeProvider{},
		policy:       policy,
		logger:       logger,
	}
}

// Execute выполняет use case отправки OTP
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидируем и нормализуем номер телефона
	mobile, err := normalizeMobile(req.Mobile, uc.policy.Region)
	if err != nil {
		uc.logger.Warn("SendOtp: invalid mobile number %q: %v", req.Mobile, err)
		return nil, err
	}

	uc.logger.Info("SendOtp: mobile=%s", mobile)

	// 2. Генерируем 6-значный код
	code, err := generateCode()
	if err != nil {
		uc.logger.Error("SendOtp: failed to generate code: %v", err)
		return nil, fmt.Errorf("%w: failed to generate code: %v", ErrInternal, err)
	}

	// 3. Сохраняем сессию
	now := uc.timeProvider.Now()
	session := &sessionstore.OtpSession{
		ID:        uuid.NewString(),
		Mobile:    mobile,
		Code:      code,
		ExpiresAt: now.Add(uc.policy.TTL),
	}

	if err := uc.sessions.PutOtp(ctx, session); err != nil {
		uc.logger.Error("SendOtp: failed to store session: %v", err)
		return nil, fmt.Errorf("%w: failed to store session: %v", ErrInternal, err)
	}

	resp := &Response{
		SessionID: session.ID,
		Mobile:    mobile,
		ExpiresAt: session.ExpiresAt,
	}

	// 4. Отправляем код. В dev-режиме SMS не уходит, код возвращается в ответе.
	if uc.policy.DevMode {
		uc.logger.Warn("SendOtp: dev mode, otp returned in response for mobile=%s", mobile)
		resp.DevCode = code
		return resp, nil
	}

	if err := uc.smsClient.SendOtp(ctx, mobile, code); err != nil {
		uc.logger.Error("SendOtp: failed to send sms to %s: %v", mobile, err)
		return nil, fmt.Errorf("%w: failed to send sms: %v", ErrInternal, err)
	}

	uc.logger.Info("SendOtp: otp sent, session=%s", session.ID)

	return resp, nil
}

// normalizeMobile валидирует номер и приводит его к E.164
func normalizeMobile(raw, region string) (string, error) {
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMobile, err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMobile, raw)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// generateCode генерирует криптостойкий 6-значный код
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
