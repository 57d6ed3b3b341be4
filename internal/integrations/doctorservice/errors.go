package doctorservice

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден в DoctorService
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("doctorservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("doctorservice client: invalid response")
)
