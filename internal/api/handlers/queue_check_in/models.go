package queue_check_in

import (
	"time"

	checkIn "github.com/m04kA/HMS-AppointmentService/internal/usecase/check_in"
)

// CheckInRequest HTTP request model
type CheckInRequest struct {
	// Priority приоритет обслуживания; 0 = обычный
	Priority int `json:"priority,omitempty"`
}

// QueueEntryResponse HTTP response model
type QueueEntryResponse struct {
	EntryID              int64  `json:"entryId"`
	AppointmentID        int64  `json:"appointmentId"`
	DoctorID             int64  `json:"doctorId"`
	PatientName          string `json:"patientName"`
	TokenNumber          int    `json:"tokenNumber"`
	TokenDisplay         string `json:"tokenDisplay"`
	Position             int    `json:"position"`
	Status               string `json:"status"`
	Priority             int    `json:"priority"`
	CheckInTime          string `json:"checkInTime"` // ISO 8601 format
	EstimatedWaitMinutes int    `json:"estimatedWaitMinutes"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkIn.Response) *QueueEntryResponse {
	return &QueueEntryResponse{
		EntryID:              resp.EntryID,
		AppointmentID:        resp.AppointmentID,
		DoctorID:             resp.DoctorID,
		PatientName:          resp.PatientName,
		TokenNumber:          resp.TokenNumber,
		TokenDisplay:         resp.TokenDisplay,
		Position:             resp.Position,
		Status:               resp.Status,
		Priority:             resp.Priority,
		CheckInTime:          resp.CheckInTime.Format(time.RFC3339),
		EstimatedWaitMinutes: resp.EstimatedWaitMinutes,
	}
}
