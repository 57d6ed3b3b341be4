package call_next

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	callNext "github.com/m04kA/HMS-AppointmentService/internal/usecase/call_next"
)

const (
	msgInvalidDoctorID  = "некорректный ID врача"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgQueueEmpty       = "в очереди нет ожидающих пациентов"
	msgConcurrentUpdate = "очередь была изменена параллельно, повторите запрос"
)

type Handler struct {
	useCase CallNextUseCase
	logger  Logger
}

func NewHandler(useCase CallNextUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/doctors/{doctorId}/queue/call-next?date=YYYY-MM-DD
// Дата по умолчанию - сегодняшняя.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.ParseInt(vars["doctorId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /doctors/{id}/queue/call-next - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	date := time.Now()
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err = time.Parse(domain.DateFormat, rawDate)
		if err != nil {
			h.logger.Warn("POST /doctors/{id}/queue/call-next - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &callNext.Request{
		DoctorID: doctorID,
		Date:     date,
	})
	if err != nil {
		switch {
		case errors.Is(err, callNext.ErrQueueEmpty):
			h.logger.Info("POST /doctors/{id}/queue/call-next - Queue empty: doctor_id=%d", doctorID)
			handlers.RespondNotFound(w, msgQueueEmpty)

		case errors.Is(err, callNext.ErrStaleWrite):
			h.logger.Warn("POST /doctors/{id}/queue/call-next - Concurrent update: doctor_id=%d", doctorID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, callNext.ErrInvalidInput):
			h.logger.Warn("POST /doctors/{id}/queue/call-next - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDoctorID)

		default:
			h.logger.Error("POST /doctors/{id}/queue/call-next - Failed to call next: doctor_id=%d, error=%v",
				doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /doctors/{id}/queue/call-next - Called next patient: doctor_id=%d, token=%s",
		doctorID, result.TokenDisplay)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
