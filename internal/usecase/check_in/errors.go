package check_in

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись на приём не найдена
	ErrAppointmentNotFound = errors.New("check_in: appointment not found")

	// ErrInvalidStatusTransition возвращается, когда статус записи не допускает чек-ин
	ErrInvalidStatusTransition = errors.New("check_in: status does not allow check-in")

	// ErrWrongDay возвращается при чек-ине не в день приёма
	ErrWrongDay = errors.New("check_in: appointment is not scheduled for today")

	// ErrAlreadyCheckedIn возвращается при повторном чек-ине той же записи
	ErrAlreadyCheckedIn = errors.New("check_in: appointment already checked in")

	// ErrStaleWrite возвращается, когда запись изменилась между чтением и чек-ином
	ErrStaleWrite = errors.New("check_in: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_in: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_in: internal error")
)
