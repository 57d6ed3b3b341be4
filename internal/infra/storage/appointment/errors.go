package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись на приём не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrStaleWrite возвращается, когда версия записи изменилась между чтением и записью
	ErrStaleWrite = errors.New("appointment.repository: stale write, version mismatch")

	// ErrDuplicateNumber возвращается при конфликте уникального номера записи
	ErrDuplicateNumber = errors.New("appointment.repository: duplicate appointment number")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
