package get_available_slots

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Request запрос на получение доступных слотов врача
type Request struct {
	DoctorID int64
	Date     time.Time
}

// Slot один слот приёма в ответе
type Slot struct {
	StartTime        types.TimeString
	EndTime          types.TimeString
	DurationMinutes  int
	Teleconsultation bool
	Available        bool
}

// Response ответ со слотами врача на дату
type Response struct {
	DoctorID   int64
	DoctorName string
	Date       time.Time
	OnLeave    bool
	Slots      []Slot
}
