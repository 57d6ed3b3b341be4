package update_queue_entry

import (
	"time"

	updateQueueEntry "github.com/m04kA/HMS-AppointmentService/internal/usecase/update_queue_entry"
)

// UpdateQueueEntryRequest HTTP request model
type UpdateQueueEntryRequest struct {
	// Action одно из: start, complete, skip, no_show
	Action string `json:"action"`
	// ExpectedVersion опциональная ожидаемая версия записи для защиты от гонок
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`
}

// QueueEntryResponse HTTP response model
type QueueEntryResponse struct {
	EntryID              int64   `json:"entryId"`
	AppointmentID        int64   `json:"appointmentId"`
	TokenDisplay         string  `json:"tokenDisplay"`
	Status               string  `json:"status"`
	Position             int     `json:"position"`
	SkipCount            int     `json:"skipCount"`
	ActualWaitMinutes    int     `json:"actualWaitMinutes"`
	ConsultationStart    *string `json:"consultationStart,omitempty"` // ISO 8601 format
	ConsultationEnd      *string `json:"consultationEnd,omitempty"`   // ISO 8601 format
	EstimatedWaitMinutes int     `json:"estimatedWaitMinutes"`
	Version              int64   `json:"version"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateQueueEntry.Response) *QueueEntryResponse {
	out := &QueueEntryResponse{
		EntryID:              resp.EntryID,
		AppointmentID:        resp.AppointmentID,
		TokenDisplay:         resp.TokenDisplay,
		Status:               resp.Status,
		Position:             resp.Position,
		SkipCount:            resp.SkipCount,
		ActualWaitMinutes:    resp.ActualWaitMinutes,
		EstimatedWaitMinutes: resp.EstimatedWaitMinutes,
		Version:              resp.Version,
	}
	if resp.ConsultationStart != nil {
		start := resp.ConsultationStart.Format(time.RFC3339)
		out.ConsultationStart = &start
	}
	if resp.ConsultationEnd != nil {
		end := resp.ConsultationEnd.Format(time.RFC3339)
		out.ConsultationEnd = &end
	}
	return out
}
