package appointments

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByNumber(ctx context.Context, number string) (*domain.Appointment, error)
	GetByGuestMobile(ctx context.Context, mobile, number string) (*domain.Appointment, error)
	GetByFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	CountByStatus(ctx context.Context, doctorID int64, date string) (map[domain.AppointmentStatus]int, error)
	UpdateStatus(ctx context.Context, id, version int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id, version int64, status domain.AppointmentStatus, cancelledBy, reason string) error
}

// SessionStore интерфейс хранилища гостевых токенов доступа
type SessionStore interface {
	GetAccessToken(ctx context.Context, token string) (int64, error)
}

// AuditRepository интерфейс журнала аудита
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
