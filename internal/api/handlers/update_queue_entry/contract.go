package update_queue_entry

import (
	"context"

	updateQueueEntry "github.com/m04kA/HMS-AppointmentService/internal/usecase/update_queue_entry"
)

type UpdateQueueEntryUseCase interface {
	Execute(ctx context.Context, req *updateQueueEntry.Request) (*updateQueueEntry.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
