package book_appointment

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("book_appointment: doctor not found")

	// ErrDoctorUnavailable возвращается, когда врач в отпуске или неактивен
	ErrDoctorUnavailable = errors.New("book_appointment: doctor is unavailable on this date")

	// ErrSlotNotInSchedule возвращается, когда слот не порождается ни одним действующим правилом расписания
	ErrSlotNotInSchedule = errors.New("book_appointment: slot is not in the doctor's schedule")

	// ErrSlotTaken возвращается, когда слот уже занят активной записью или сессия врача заполнена
	ErrSlotTaken = errors.New("book_appointment: slot is already taken")

	// ErrBookingTimeout возвращается, когда бронирование не получило блокировку за отведённое время
	ErrBookingTimeout = errors.New("book_appointment: booking timed out waiting for the slot lock")

	// ErrOtpExpired возвращается, когда OTP сессия гостя истекла или не найдена
	ErrOtpExpired = errors.New("book_appointment: otp session expired")

	// ErrOtpMismatch возвращается, когда OTP сессия не подтверждена или привязана к другому номеру
	ErrOtpMismatch = errors.New("book_appointment: otp verification mismatch")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)
