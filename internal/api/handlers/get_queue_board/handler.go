package get_queue_board

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/service/queue"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	service QueueService
	logger  Logger
}

func NewHandler(service QueueService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/queue?date=YYYY-MM-DD
// Дата по умолчанию - сегодняшняя.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.ParseInt(vars["doctorId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/queue - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	date := time.Now()
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err = time.Parse(domain.DateFormat, rawDate)
		if err != nil {
			h.logger.Warn("GET /doctors/{id}/queue - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}

	board, err := h.service.GetBoard(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrInvalidInput):
			h.logger.Warn("GET /doctors/{id}/queue - Invalid input: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondBadRequest(w, msgInvalidDoctorID)

		default:
			h.logger.Error("GET /doctors/{id}/queue - Failed to get board: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/queue - Board retrieved: doctor_id=%d, entries=%d, waiting=%d",
		doctorID, len(board.Entries), board.WaitingCount)
	handlers.RespondJSON(w, http.StatusOK, board)
}
