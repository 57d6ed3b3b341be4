package list_schedule_rules

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule/models"
)

type ScheduleService interface {
	ListByDoctor(ctx context.Context, doctorID int64, activeOnly bool) (*models.RuleListResponse, error)
	ListEffective(ctx context.Context, doctorID int64, date time.Time) (*models.RuleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
