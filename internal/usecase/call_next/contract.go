package call_next

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// QueueRepository интерфейс репозитория очереди
type QueueRepository interface {
	GetNextWaiting(ctx context.Context, doctorID int64, date string) (*domain.QueueEntry, error)
	Update(ctx context.Context, entry *domain.QueueEntry) error
	RecomputePositions(ctx context.Context, doctorID int64, date string) error
}

// AuditRepository интерфейс журнала аудита
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
