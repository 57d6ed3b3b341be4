package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// ScheduleRuleRepository интерфейс репозитория правил расписания
type ScheduleRuleRepository interface {
	GetByDoctorID(ctx context.Context, doctorID int64, activeOnly bool) ([]*domain.ScheduleRule, error)
}

// AppointmentRepository интерфейс репозитория записей на приём
type AppointmentRepository interface {
	GetByDoctorAndDate(ctx context.Context, doctorID int64, date string, activeOnly bool) ([]*domain.Appointment, error)
}

// DoctorServiceClient интерфейс клиента DoctorService
type DoctorServiceClient interface {
	GetDoctor(ctx context.Context, doctorID int64) (*doctorservice.Doctor, error)
	IsOnLeave(ctx context.Context, doctorID int64, date string) (bool, error)
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
