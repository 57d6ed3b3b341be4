package reschedule_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Policy политики переноса из конфигурации сервиса
type Policy struct {
	HospitalID         int64
	MaxReschedules     int
	TokenDisplayPrefix string
}

// Request запрос на перенос записи на новый слот
type Request struct {
	AppointmentID int64
	// ActorPatientID ID пациента, выполняющего перенос; 0 для персонала больницы
	ActorPatientID int64
	NewDate        time.Time
	NewSlotStart   types.TimeString
}

// Response ответ с новой записью, созданной переносом
type Response struct {
	ID                    int64
	AppointmentNumber     string
	DoctorID              int64
	DoctorName            string
	PatientID             int64
	PatientName           string
	Date                  time.Time
	SlotStart             types.TimeString
	SlotEnd               types.TimeString
	Status                string
	TokenNumber           int
	TokenDisplay          string
	RescheduleCount       int
	PreviousAppointmentID int64
	CreatedAt             time.Time
}
