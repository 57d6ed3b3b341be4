package update_queue_entry

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// QueueRepository интерфейс репозитория очереди
type QueueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error)
	Update(ctx context.Context, entry *domain.QueueEntry) error
	RecomputePositions(ctx context.Context, doctorID int64, date string) error
}

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id, version int64, status domain.AppointmentStatus) error
}

// StatsRepository интерфейс статистики врачей
type StatsRepository interface {
	RecordConsultation(ctx context.Context, doctorID int64, minutes int) error
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
