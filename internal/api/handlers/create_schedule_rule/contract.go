package create_schedule_rule

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule/models"
)

type ScheduleService interface {
	AddRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
