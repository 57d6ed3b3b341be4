package book_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// Policy политики бронирования из конфигурации сервиса
type Policy struct {
	HospitalID         int64
	TokenDisplayPrefix string
	GuestTokenTTL      time.Duration
}

// Request запрос на бронирование записи на приём
type Request struct {
	DoctorID      int64
	PatientID     int64 // 0 = гостевое бронирование
	PatientName   string
	PatientMobile string
	Date          time.Time
	SlotStart     types.TimeString
	BookingSource string

	ChiefComplaint *string
	BookingNotes   *string

	// OtpSessionID обязателен для гостевого бронирования: подтверждённая
	// сессия потребляется ровно один раз
	OtpSessionID string
}

// Response ответ с созданной записью на приём
type Response struct {
	ID                int64
	AppointmentNumber string
	HospitalID        int64
	DoctorID          int64
	DoctorName        string
	PatientID         int64
	PatientName       string
	PatientMobile     string
	Date              time.Time
	SlotStart         types.TimeString
	SlotEnd           types.TimeString
	Status            string
	TokenNumber       int
	TokenDisplay      string
	Teleconsultation  bool
	ConsultationFee   float64
	BookingSource     string
	ChiefComplaint    *string
	BookingNotes      *string

	// GuestAccessToken выдаётся только для гостевых бронирований
	GuestAccessToken string

	CreatedAt time.Time
}
