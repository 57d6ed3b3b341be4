package schedule

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило расписания не найдено
	ErrRuleNotFound = errors.New("schedule rule not found")

	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrScheduleConflict возвращается, когда новое правило пересекается с существующим
	ErrScheduleConflict = errors.New("schedule rule conflicts with an existing rule")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
