package get_queue_board

import (
	"context"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/service/queue/models"
)

type QueueService interface {
	GetBoard(ctx context.Context, doctorID int64, date time.Time) (*models.BoardResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
