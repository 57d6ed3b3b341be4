package call_next

import "errors"

var (
	// ErrQueueEmpty возвращается, когда в очереди врача нет ожидающих
	ErrQueueEmpty = errors.New("call_next: queue is empty")

	// ErrStaleWrite возвращается, когда запись очереди изменилась между чтением и вызовом
	ErrStaleWrite = errors.New("call_next: queue entry was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("call_next: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("call_next: internal error")
)
