package reschedule_appointment

import "fmt"

// validateRequest проверяет корректность входных данных
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: new date is required", ErrInvalidInput)
	}
	if err := req.NewSlotStart.Validate(); err != nil {
		return fmt.Errorf("%w: new slot start: %v", ErrInvalidInput, err)
	}
	return nil
}
