package queue

import (
	"context"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
)

// QueueRepository интерфейс репозитория очереди
type QueueRepository interface {
	GetBoard(ctx context.Context, doctorID int64, date string) ([]*domain.QueueEntry, error)
}

// StatsRepository интерфейс статистики врачей
type StatsRepository interface {
	AvgConsultationMinutes(ctx context.Context, doctorID int64) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
