package book_appointment

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	bookAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/book_appointment"
	"github.com/m04kA/HMS-AppointmentService/pkg/types"
)

// BookAppointmentRequest HTTP request model
type BookAppointmentRequest struct {
	DoctorID      int64  `json:"doctorId"`
	PatientName   string `json:"patientName"`
	PatientMobile string `json:"patientMobile"`
	Date          string `json:"date"`      // "2026-09-14"
	SlotStart     string `json:"slotStart"` // "10:00"
	BookingSource string `json:"bookingSource"`

	ChiefComplaint *string `json:"chiefComplaint,omitempty"`
	BookingNotes   *string `json:"bookingNotes,omitempty"`

	// OtpSessionID обязателен для гостевого бронирования
	OtpSessionID string `json:"otpSessionId,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                int64   `json:"id"`
	AppointmentNumber string  `json:"appointmentNumber"`
	HospitalID        int64   `json:"hospitalId"`
	DoctorID          int64   `json:"doctorId"`
	DoctorName        string  `json:"doctorName"`
	PatientID         int64   `json:"patientId"`
	PatientName       string  `json:"patientName"`
	PatientMobile     string  `json:"patientMobile"`
	Date              string  `json:"date"`
	SlotStart         string  `json:"slotStart"`
	SlotEnd           string  `json:"slotEnd"`
	Status            string  `json:"status"`
	TokenNumber       int     `json:"tokenNumber"`
	TokenDisplay      string  `json:"tokenDisplay"`
	Teleconsultation  bool    `json:"teleconsultation"`
	ConsultationFee   float64 `json:"consultationFee"`
	BookingSource     string  `json:"bookingSource"`
	ChiefComplaint    *string `json:"chiefComplaint,omitempty"`
	BookingNotes      *string `json:"bookingNotes,omitempty"`

	GuestAccessToken string `json:"guestAccessToken,omitempty"`

	CreatedAt string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookAppointmentRequest) ToUseCaseRequest(patientID int64) (*bookAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	slotStart, err := types.NewTimeStringFromString(r.SlotStart)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		DoctorID:       r.DoctorID,
		PatientID:      patientID,
		PatientName:    r.PatientName,
		PatientMobile:  r.PatientMobile,
		Date:           date,
		SlotStart:      slotStart,
		BookingSource:  r.BookingSource,
		ChiefComplaint: r.ChiefComplaint,
		BookingNotes:   r.BookingNotes,
		OtpSessionID:   r.OtpSessionID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                resp.ID,
		AppointmentNumber: resp.AppointmentNumber,
		HospitalID:        resp.HospitalID,
		DoctorID:          resp.DoctorID,
		DoctorName:        resp.DoctorName,
		PatientID:         resp.PatientID,
		PatientName:       resp.PatientName,
		PatientMobile:     resp.PatientMobile,
		Date:              resp.Date.Format(domain.DateFormat),
		SlotStart:         resp.SlotStart.String(),
		SlotEnd:           resp.SlotEnd.String(),
		Status:            resp.Status,
		TokenNumber:       resp.TokenNumber,
		TokenDisplay:      resp.TokenDisplay,
		Teleconsultation:  resp.Teleconsultation,
		ConsultationFee:   resp.ConsultationFee,
		BookingSource:     resp.BookingSource,
		ChiefComplaint:    resp.ChiefComplaint,
		BookingNotes:      resp.BookingNotes,
		GuestAccessToken:  resp.GuestAccessToken,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
	}
}
