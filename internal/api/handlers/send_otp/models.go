package send_otp

import (
	"time"

	sendOtp "github.com/m04kA/HMS-AppointmentService/internal/usecase/send_otp"
)

// SendOtpRequest HTTP request model
type SendOtpRequest struct {
	Mobile string `json:"mobile"`
}

// SendOtpResponse HTTP response model
type SendOtpResponse struct {
	SessionID string `json:"sessionId"`
	Mobile    string `json:"mobile"`
	ExpiresAt string `json:"expiresAt"` // ISO 8601 format

	// DevCode присутствует только в dev-режиме
	DevCode string `json:"devCode,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *sendOtp.Response) *SendOtpResponse {
	return &SendOtpResponse{
		SessionID: resp.SessionID,
		Mobile:    resp.Mobile,
		ExpiresAt: resp.ExpiresAt.Format(time.RFC3339),
		DevCode:   resp.DevCode,
	}
}
