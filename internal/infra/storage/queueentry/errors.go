package queueentry

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись очереди не найдена
	ErrEntryNotFound = errors.New("queueentry.repository: queue entry not found")

	// ErrQueueEmpty возвращается, когда в очереди нет ожидающих пациентов
	ErrQueueEmpty = errors.New("queueentry.repository: queue is empty")

	// ErrStaleWrite возвращается, когда версия записи изменилась между чтением и записью
	ErrStaleWrite = errors.New("queueentry.repository: stale write, version mismatch")

	// ErrDuplicateEntry возвращается при повторном чек-ине той же записи на приём
	ErrDuplicateEntry = errors.New("queueentry.repository: appointment already checked in")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("queueentry.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("queueentry.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("queueentry.repository: failed to scan row")
)
