package reschedule_appointment

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Create(ctx context.Context, apt *domain.Appointment) (*domain.Appointment, error)
	GetByDoctorAndDate(ctx context.Context, doctorID int64, date string, activeOnly bool) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id, version int64, status domain.AppointmentStatus) error
	NextTokenNumber(ctx context.Context, doctorID int64, date string) (int, error)
	NextAppointmentSequence(ctx context.Context, year int) (int64, error)
}

// ScheduleRuleRepository интерфейс репозитория правил расписания
type ScheduleRuleRepository interface {
	GetByDoctorID(ctx context.Context, doctorID int64, activeOnly bool) ([]*domain.ScheduleRule, error)
}

// AuditRepository интерфейс журнала аудита
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
}

// DoctorServiceClient интерфейс клиента DoctorService
type DoctorServiceClient interface {
	GetDoctor(ctx context.Context, doctorID int64) (*doctorservice.Doctor, error)
	IsOnLeave(ctx context.Context, doctorID int64, date string) (bool, error)
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
