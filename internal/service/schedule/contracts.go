package schedule

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// ScheduleRuleRepository интерфейс репозитория правил расписания
type ScheduleRuleRepository interface {
	Create(ctx context.Context, rule *domain.ScheduleRule) (*domain.ScheduleRule, error)
	GetByID(ctx context.Context, id int64) (*domain.ScheduleRule, error)
	GetByDoctorID(ctx context.Context, doctorID int64, activeOnly bool) ([]*domain.ScheduleRule, error)
	Deactivate(ctx context.Context, id int64) error
}

// DoctorServiceClient интерфейс клиента для DoctorService
type DoctorServiceClient interface {
	GetDoctor(ctx context.Context, doctorID int64) (*doctorservice.Doctor, error)
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
