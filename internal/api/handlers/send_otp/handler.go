package send_otp

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	sendOtp "github.com/m04kA/HMS-AppointmentService/internal/usecase/send_otp"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidMobile      = "некорректный номер мобильного телефона"
)

type Handler struct {
	useCase SendOtpUseCase
	logger  Logger
}

func NewHandler(useCase SendOtpUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/otp/send
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req SendOtpRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /otp/send - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &sendOtp.Request{Mobile: req.Mobile})
	if err != nil {
		switch {
		case errors.Is(err, sendOtp.ErrInvalidMobile):
			h.logger.Warn("POST /otp/send - Invalid mobile number")
			handlers.RespondBadRequest(w, msgInvalidMobile)

		default:
			h.logger.Error("POST /otp/send - Failed to send otp: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /otp/send - Otp session created: session_id=%s", result.SessionID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
