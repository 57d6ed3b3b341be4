package models

import (
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// BoardEntryResponse одна позиция на табло очереди
type BoardEntryResponse struct {
	EntryID       int64  `json:"entryId"`
	AppointmentID int64  `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	TokenNumber   int    `json:"tokenNumber"`
	TokenDisplay  string `json:"tokenDisplay"`
	Position      int    `json:"position"`
	Status        string `json:"status"`
	Priority      int    `json:"priority"`
	SkipCount     int    `json:"skipCount"`

	CheckInTime time.Time  `json:"checkInTime"`
	CalledTime  *time.Time `json:"calledTime,omitempty"`

	EstimatedWaitMinutes int `json:"estimatedWaitMinutes"`
}

// BoardResponse табло живой очереди врача на дату
type BoardResponse struct {
	DoctorID int64  `json:"doctorId"`
	Date     string `json:"date"`

	// NowServing токен пациента в кабинете, если консультация идёт
	NowServing *string `json:"nowServing,omitempty"`
	// LastCalled токен последнего вызванного, но ещё не зашедшего пациента
	LastCalled *string `json:"lastCalled,omitempty"`

	WaitingCount           int `json:"waitingCount"`
	AvgConsultationMinutes int `json:"avgConsultationMinutes"`

	Entries []BoardEntryResponse `json:"entries"`
}

// FromDomainEntry конвертирует domain модель в DTO
func FromDomainEntry(e *domain.QueueEntry) *BoardEntryResponse {
	if e == nil {
		return nil
	}

	return &BoardEntryResponse{
		EntryID:              e.ID,
		AppointmentID:        e.AppointmentID,
		PatientName:          e.PatientName,
		TokenNumber:          e.TokenNumber,
		TokenDisplay:         e.TokenDisplay,
		Position:             e.Position,
		Status:               string(e.Status),
		Priority:             e.Priority,
		SkipCount:            e.SkipCount,
		CheckInTime:          e.CheckInTime,
		CalledTime:           e.CalledTime,
		EstimatedWaitMinutes: e.EstimatedWaitMinutes,
	}
}
