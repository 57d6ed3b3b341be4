package reschedule_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	NewDate      string `json:"newDate"`      // "2026-09-21"
	NewSlotStart string `json:"newSlotStart"` // "11:30"
	// Staff выставляется персоналом больницы: перенос без проверки владельца
	Staff bool `json:"staff,omitempty"`
}

// RescheduledResponse HTTP response model
type RescheduledResponse struct {
	ID                    int64  `json:"id"`
	AppointmentNumber     string `json:"appointmentNumber"`
	DoctorID              int64  `json:"doctorId"`
	DoctorName            string `json:"doctorName"`
	PatientID             int64  `json:"patientId"`
	PatientName           string `json:"patientName"`
	Date                  string `json:"date"`
	SlotStart             string `json:"slotStart"`
	SlotEnd               string `json:"slotEnd"`
	Status                string `json:"status"`
	TokenNumber           int    `json:"tokenNumber"`
	TokenDisplay          string `json:"tokenDisplay"`
	RescheduleCount       int    `json:"rescheduleCount"`
	PreviousAppointmentID int64  `json:"previousAppointmentId"`
	CreatedAt             string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID, userID int64) (*rescheduleAppointment.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	newSlotStart, err := types.NewTimeStringFromString(r.NewSlotStart)
	if err != nil {
		return nil, err
	}

	actorPatientID := userID
	if r.Staff {
		actorPatientID = 0
	}

	return &rescheduleAppointment.Request{
		AppointmentID:  appointmentID,
		ActorPatientID: actorPatientID,
		NewDate:        newDate,
		NewSlotStart:   newSlotStart,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduledResponse {
	return &RescheduledResponse{
		ID:                    resp.ID,
		AppointmentNumber:     resp.AppointmentNumber,
		DoctorID:              resp.DoctorID,
		DoctorName:            resp.DoctorName,
		PatientID:             resp.PatientID,
		PatientName:           resp.PatientName,
		Date:                  resp.Date.Format(domain.DateFormat),
		SlotStart:             resp.SlotStart.String(),
		SlotEnd:               resp.SlotEnd.String(),
		Status:                resp.Status,
		TokenNumber:           resp.TokenNumber,
		TokenDisplay:          resp.TokenDisplay,
		RescheduleCount:       resp.RescheduleCount,
		PreviousAppointmentID: resp.PreviousAppointmentID,
		CreatedAt:             resp.CreatedAt.Format(time.RFC3339),
	}
}
