package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись на приём не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда запись не может быть отменена
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrStaleWrite возвращается, когда запись изменилась между чтением и обновлением
	ErrStaleWrite = errors.New("appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
