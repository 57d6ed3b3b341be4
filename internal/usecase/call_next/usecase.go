package call_next

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	queueRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/queueentry"
)

// UseCase use case вызова следующего пациента из очереди.
// Выбор и смена статуса идут в одной сериализуемой транзакции с блокировкой
// строки: два ресепшена не могут вызвать одного и того же пациента.
type UseCase struct {
	queue        QueueRepository
	auditRepo    AuditRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	queue QueueRepository,
	auditRepo AuditRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		queue:        queue,
		auditRepo:    auditRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case вызова следующего пациента
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CallNext: doctor=%d, date=%s", req.DoctorID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	dateStr := req.Date.Format(domain.DateFormat)
	now := uc.timeProvider.Now()

	var entry *domain.QueueEntry

	// 2. Вызов в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = uc.queue.GetNextWaiting(txCtx, req.DoctorID, dateStr)
		if err != nil {
			if errors.Is(err, queueRepo.ErrQueueEmpty) {
				uc.logger.Info("CallNext: queue of doctor id=%d is empty", req.DoctorID)
				return ErrQueueEmpty
			}
			uc.logger.Error("CallNext: failed to get next waiting entry: %v", err)
			return fmt.Errorf("%w: failed to get next waiting entry: %v", ErrInternal, err)
		}

		oldStatus := string(entry.Status)

		entry.Status = domain.QueueStatusCalled
		entry.CalledTime = &now
		if err := uc.queue.Update(txCtx, entry); err != nil {
			if errors.Is(err, queueRepo.ErrStaleWrite) {
				uc.logger.Warn("CallNext: entry id=%d was modified concurrently", entry.ID)
				return ErrStaleWrite
			}
			uc.logger.Error("CallNext: failed to update entry id=%d: %v", entry.ID, err)
			return fmt.Errorf("%w: failed to update entry: %v", ErrInternal, err)
		}

		// Вызванный пациент покидает ожидание, позиции остальных уплотняются
		if err := uc.queue.RecomputePositions(txCtx, req.DoctorID, dateStr); err != nil {
			uc.logger.Error("CallNext: failed to recompute positions: %v", err)
			return fmt.Errorf("%w: failed to recompute positions: %v", ErrInternal, err)
		}

		newStatus := string(domain.QueueStatusCalled)
		record := &domain.AuditRecord{
			HospitalID:  entry.HospitalID,
			EntityType:  domain.AuditEntityQueueEntry,
			EntityID:    entry.ID,
			Action:      domain.AuditActionStatusTransition,
			Description: fmt.Sprintf("token %s called", entry.TokenDisplay),
			Actor:       "reception",
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("CallNext: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CallNext: called entry id=%d, token=%s", entry.ID, entry.TokenDisplay)

	return &Response{
		EntryID:       entry.ID,
		AppointmentID: entry.AppointmentID,
		PatientName:   entry.PatientName,
		TokenNumber:   entry.TokenNumber,
		TokenDisplay:  entry.TokenDisplay,
		Status:        string(entry.Status),
		CalledTime:    now,
		SkipCount:     entry.SkipCount,
	}, nil
}
