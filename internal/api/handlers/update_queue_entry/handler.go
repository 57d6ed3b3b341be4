package update_queue_entry

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	updateQueueEntry "github.com/m04kA/HMS-AppointmentService/internal/usecase/update_queue_entry"
)

const (
	msgInvalidEntryID     = "некорректный ID записи очереди"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "запись очереди не найдена"
	msgInvalidTransition  = "действие недопустимо в текущем статусе записи"
	msgConcurrentUpdate   = "запись была изменена параллельно, повторите запрос"
)

type Handler struct {
	useCase UpdateQueueEntryUseCase
	logger  Logger
}

func NewHandler(useCase UpdateQueueEntryUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/queue/{entryId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, err := strconv.ParseInt(vars["entryId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /queue/{id} - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	var req UpdateQueueEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /queue/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &updateQueueEntry.Request{
		EntryID:         entryID,
		Action:          updateQueueEntry.Action(req.Action),
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		switch {
		case errors.Is(err, updateQueueEntry.ErrEntryNotFound):
			h.logger.Warn("PATCH /queue/{id} - Entry not found: entry_id=%d", entryID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateQueueEntry.ErrInvalidStatusTransition):
			h.logger.Warn("PATCH /queue/{id} - Invalid transition: entry_id=%d, action=%s", entryID, req.Action)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, updateQueueEntry.ErrStaleWrite):
			h.logger.Warn("PATCH /queue/{id} - Concurrent update: entry_id=%d", entryID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, updateQueueEntry.ErrInvalidInput):
			h.logger.Warn("PATCH /queue/{id} - Invalid input: entry_id=%d, error=%v", entryID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PATCH /queue/{id} - Failed to update entry: entry_id=%d, error=%v", entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /queue/{id} - Entry updated: entry_id=%d, action=%s, status=%s",
		entryID, req.Action, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
