package models

import (
	"errors"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи на приём
type CancelAppointmentRequest struct {
	// ActorPatientID идентификатор пациента, выполняющего отмену;
	// 0 означает отмену персоналом больницы
	ActorPatientID     int64  `json:"patientId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetPatientAppointmentsRequest запрос на получение записей пациента
type GetPatientAppointmentsRequest struct {
	PatientID int64   `json:"patientId"`
	Status    *string `json:"status,omitempty"`
}

// GetDoctorAppointmentsRequest запрос на получение записей врача на дату
type GetDoctorAppointmentsRequest struct {
	DoctorID   int64     `json:"doctorId"`
	Date       time.Time `json:"date"`
	Status     *string   `json:"status,omitempty"`
	ActiveOnly bool      `json:"activeOnly,omitempty"`
}

// Response модели

// AppointmentResponse ответ с данными записи на приём
type AppointmentResponse struct {
	ID                int64  `json:"id"`
	AppointmentNumber string `json:"appointmentNumber"`
	HospitalID        int64  `json:"hospitalId"`
	DoctorID          int64  `json:"doctorId"`
	DoctorName        string `json:"doctorName"`
	PatientID         int64  `json:"patientId"`
	PatientName       string `json:"patientName"`
	PatientMobile     string `json:"patientMobile"`
	Date              string `json:"date"`      // "2026-09-14"
	SlotStart         string `json:"slotStart"` // "10:00"
	SlotEnd           string `json:"slotEnd"`   // "10:15"
	Status            string `json:"status"`
	TokenNumber       int    `json:"tokenNumber"`
	Teleconsultation  bool   `json:"teleconsultation"`

	ConsultationFee float64 `json:"consultationFee"`
	BookingSource   string  `json:"bookingSource"`

	ChiefComplaint *string `json:"chiefComplaint,omitempty"`
	BookingNotes   *string `json:"bookingNotes,omitempty"`

	RescheduleCount       int    `json:"rescheduleCount"`
	PreviousAppointmentID *int64 `json:"previousAppointmentId,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// AppointmentCountsResponse ответ со счётчиками записей врача на дату
type AppointmentCountsResponse struct {
	DoctorID int64          `json:"doctorId"`
	Date     string         `json:"date"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                    a.ID,
		AppointmentNumber:     a.AppointmentNumber,
		HospitalID:            a.HospitalID,
		DoctorID:              a.DoctorID,
		DoctorName:            a.DoctorName,
		PatientID:             a.PatientID,
		PatientName:           a.PatientName,
		PatientMobile:         a.PatientMobile,
		Date:                  a.Date.Format(domain.DateFormat),
		SlotStart:             a.SlotStart.String(),
		SlotEnd:               a.SlotEnd.String(),
		Status:                string(a.Status),
		TokenNumber:           a.TokenNumber,
		Teleconsultation:      a.Teleconsultation,
		ConsultationFee:       a.ConsultationFee,
		BookingSource:         a.BookingSource,
		ChiefComplaint:        a.ChiefComplaint,
		BookingNotes:          a.BookingNotes,
		RescheduleCount:       a.RescheduleCount,
		PreviousAppointmentID: a.PreviousAppointmentID,
		CancellationReason:    a.CancellationReason,
		CancelledBy:           a.CancelledBy,
		Version:               a.Version,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	if appointments == nil {
		return &AppointmentListResponse{
			Appointments: []AppointmentResponse{},
		}
	}

	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, len(appointments)),
	}

	for i, apt := range appointments {
		if aptResp := FromDomainAppointment(apt); aptResp != nil {
			resp.Appointments[i] = *aptResp
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	validStatuses := []domain.AppointmentStatus{
		domain.StatusScheduled,
		domain.StatusConfirmed,
		domain.StatusCheckedIn,
		domain.StatusInQueue,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelledByPatient,
		domain.StatusCancelledByHospital,
		domain.StatusNoShow,
		domain.StatusRescheduled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
