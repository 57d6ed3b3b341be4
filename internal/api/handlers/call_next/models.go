package call_next

import (
	"time"

	callNext "github.com/m04kA/HMS-AppointmentService/internal/usecase/call_next"
)

// CalledEntryResponse HTTP response model
type CalledEntryResponse struct {
	EntryID       int64  `json:"entryId"`
	AppointmentID int64  `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	TokenNumber   int    `json:"tokenNumber"`
	TokenDisplay  string `json:"tokenDisplay"`
	Status        string `json:"status"`
	CalledTime    string `json:"calledTime"` // ISO 8601 format
	SkipCount     int    `json:"skipCount"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *callNext.Response) *CalledEntryResponse {
	return &CalledEntryResponse{
		EntryID:       resp.EntryID,
		AppointmentID: resp.AppointmentID,
		PatientName:   resp.PatientName,
		TokenNumber:   resp.TokenNumber,
		TokenDisplay:  resp.TokenDisplay,
		Status:        resp.Status,
		CalledTime:    resp.CalledTime.Format(time.RFC3339),
		SkipCount:     resp.SkipCount,
	}
}
