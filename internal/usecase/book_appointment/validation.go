package book_appointment

import (
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// validateRequest проверяет корректность входных данных
func validateRequest(req *Request) error {
	if req.DoctorID <= 0 {
		return fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if req.PatientID < 0 {
		return fmt.Errorf("%w: patientID must not be negative", ErrInvalidInput)
	}
	if req.PatientName == "" {
		return fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	if req.PatientMobile == "" {
		return fmt.Errorf("%w: patient mobile is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.SlotStart.Validate(); err != nil {
		return fmt.Errorf("%w: slot start: %v", ErrInvalidInput, err)
	}
	if req.PatientID == 0 && req.OtpSessionID == "" {
		return fmt.Errorf("%w: otp session is required for guest booking", ErrInvalidInput)
	}
	if req.ChiefComplaint != nil && len(*req.ChiefComplaint) > domain.MaxNotesLength {
		return fmt.Errorf("%w: chief complaint is too long", ErrInvalidInput)
	}
	if req.BookingNotes != nil && len(*req.BookingNotes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: booking notes are too long", ErrInvalidInput)
	}

	switch req.BookingSource {
	case domain.SourceOnline, domain.SourceOnlineGuest, domain.SourceCounter, domain.SourcePhone, domain.SourceWalkIn:
	default:
		return fmt.Errorf("%w: unknown booking source %q", ErrInvalidInput, req.BookingSource)
	}

	return nil
}
