package update_queue_entry

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись очереди не найдена
	ErrEntryNotFound = errors.New("update_queue_entry: queue entry not found")

	// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса записи очереди
	ErrInvalidStatusTransition = errors.New("update_queue_entry: invalid status transition")

	// ErrStaleWrite возвращается, когда запись очереди изменилась между чтением и обновлением
	ErrStaleWrite = errors.New("update_queue_entry: queue entry was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_queue_entry: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_queue_entry: internal error")
)
