package verify_otp

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	verifyOtp "github.com/m04kA/HMS-AppointmentService/internal/usecase/verify_otp"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgOtpExpired         = "OTP сессия истекла, запросите новый код"
	msgOtpMismatch        = "неверный код подтверждения"
)

type Handler struct {
	useCase VerifyOtpUseCase
	logger  Logger
}

func NewHandler(useCase VerifyOtpUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/otp/verify
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req VerifyOtpRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /otp/verify - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &verifyOtp.Request{
		SessionID: req.SessionID,
		Mobile:    req.Mobile,
		Code:      req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, verifyOtp.ErrOtpExpired):
			h.logger.Warn("POST /otp/verify - Otp session expired: session_id=%s", req.SessionID)
			handlers.RespondGone(w, msgOtpExpired)

		case errors.Is(err, verifyOtp.ErrOtpMismatch):
			h.logger.Warn("POST /otp/verify - Otp code mismatch: session_id=%s", req.SessionID)
			handlers.RespondUnauthorized(w, msgOtpMismatch)

		case errors.Is(err, verifyOtp.ErrInvalidInput):
			h.logger.Warn("POST /otp/verify - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /otp/verify - Failed to verify otp: session_id=%s, error=%v", req.SessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /otp/verify - Otp verified successfully: session_id=%s", result.SessionID)
	handlers.RespondJSON(w, http.StatusOK, &VerifyOtpResponse{
		SessionID: result.SessionID,
		Verified:  result.Verified,
	})
}
