package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда исходная запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrForbidden возвращается при попытке перенести чужую запись
	ErrForbidden = errors.New("reschedule_appointment: appointment belongs to another patient")

	// ErrInvalidStatusTransition возвращается, когда текущий статус не допускает перенос
	ErrInvalidStatusTransition = errors.New("reschedule_appointment: status does not allow rescheduling")

	// ErrRescheduleLimitExceeded возвращается при превышении лимита переносов
	ErrRescheduleLimitExceeded = errors.New("reschedule_appointment: reschedule limit exceeded")

	// ErrDoctorUnavailable возвращается, когда врач в отпуске или неактивен на новую дату
	ErrDoctorUnavailable = errors.New("reschedule_appointment: doctor is unavailable on this date")

	// ErrSlotNotInSchedule возвращается, когда новый слот не порождается расписанием
	ErrSlotNotInSchedule = errors.New("reschedule_appointment: slot is not in the doctor's schedule")

	// ErrSlotTaken возвращается, когда новый слот уже занят
	ErrSlotTaken = errors.New("reschedule_appointment: slot is already taken")

	// ErrBookingTimeout возвращается, когда перенос не получил блокировку за отведённое время
	ErrBookingTimeout = errors.New("reschedule_appointment: timed out waiting for the slot lock")

	// ErrStaleWrite возвращается, когда запись изменилась между чтением и переносом
	ErrStaleWrite = errors.New("reschedule_appointment: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
