package update_queue_entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	queueRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/queueentry"
)

// UseCase use case управления записью живой очереди: начало и завершение
// консультации, пропуск вызова и неявка. Статус записи на приём меняется
// вместе со статусом очереди в одной транзакции.
type UseCase struct {
	queue        QueueRepository
	appointments AppointmentRepository
	stats        StatsRepository
	auditRepo    AuditRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	queue QueueRepository,
	appointments AppointmentRepository,
	stats StatsRepository,
	auditRepo AuditRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		queue:        queue,
		appointments: appointments,
		stats:        stats,
		auditRepo:    auditRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case изменения состояния записи очереди
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateQueueEntry: entry=%d, action=%s", req.EntryID, req.Action)

	// 1. Валидация входных данных
	if req.EntryID <= 0 {
		return nil, fmt.Errorf("%w: entryID must be positive", ErrInvalidInput)
	}
	switch req.Action {
	case ActionStart, ActionComplete, ActionSkip, ActionNoShow:
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}

	now := uc.timeProvider.Now()

	var entry *domain.QueueEntry

	// 2. Вся цепочка переходов выполняется в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = uc.queue.GetByID(txCtx, req.EntryID)
		if err != nil {
			if errors.Is(err, queueRepo.ErrEntryNotFound) {
				uc.logger.Warn("UpdateQueueEntry: entry id=%d not found", req.EntryID)
				return ErrEntryNotFound
			}
			uc.logger.Error("UpdateQueueEntry: failed to get entry id=%d: %v", req.EntryID, err)
			return fmt.Errorf("%w: failed to get entry: %v", ErrInternal, err)
		}

		if req.ExpectedVersion != nil && *req.ExpectedVersion != entry.Version {
			uc.logger.Warn("UpdateQueueEntry: entry id=%d version mismatch: expected %d, actual %d",
				entry.ID, *req.ExpectedVersion, entry.Version)
			return ErrStaleWrite
		}

		oldStatus := entry.Status

		switch req.Action {
		case ActionStart:
			err = uc.startConsultation(txCtx, entry, now)
		case ActionComplete:
			err = uc.completeConsultation(txCtx, entry, now)
		case ActionSkip:
			err = uc.skipEntry(txCtx, entry, now)
		case ActionNoShow:
			err = uc.markNoShow(txCtx, entry)
		}
		if err != nil {
			return err
		}

		if err := uc.queue.Update(txCtx, entry); err != nil {
			if errors.Is(err, queueRepo.ErrStaleWrite) {
				uc.logger.Warn("UpdateQueueEntry: entry id=%d was modified concurrently", entry.ID)
				return ErrStaleWrite
			}
			uc.logger.Error("UpdateQueueEntry: failed to update entry id=%d: %v", entry.ID, err)
			return fmt.Errorf("%w: failed to update entry: %v", ErrInternal, err)
		}

		// Пропуск и неявка освобождают позицию в ожидании
		if req.Action == ActionSkip || req.Action == ActionNoShow {
			dateStr := entry.QueueDate.Format(domain.DateFormat)
			if err := uc.queue.RecomputePositions(txCtx, entry.DoctorID, dateStr); err != nil {
				uc.logger.Error("UpdateQueueEntry: failed to recompute positions: %v", err)
				return fmt.Errorf("%w: failed to recompute positions: %v", ErrInternal, err)
			}
		}

		fromStatus := string(oldStatus)
		toStatus := string(entry.Status)
		record := &domain.AuditRecord{
			HospitalID:  entry.HospitalID,
			EntityType:  domain.AuditEntityQueueEntry,
			EntityID:    entry.ID,
			Action:      domain.AuditActionStatusTransition,
			Description: fmt.Sprintf("token %s: %s", entry.TokenDisplay, req.Action),
			Actor:       "reception",
			OldStatus:   &fromStatus,
			NewStatus:   &toStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("UpdateQueueEntry: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("UpdateQueueEntry: entry id=%d now %s", entry.ID, entry.Status)

	resp := &Response{
		EntryID:              entry.ID,
		AppointmentID:        entry.AppointmentID,
		TokenDisplay:         entry.TokenDisplay,
		Status:               string(entry.Status),
		Position:             entry.Position,
		SkipCount:            entry.SkipCount,
		ConsultationStart:    entry.ConsultationStartTime,
		ConsultationEnd:      entry.ConsultationEndTime,
		EstimatedWaitMinutes: entry.EstimatedWaitMinutes,
		Version:              entry.Version,
	}
	if entry.ActualWaitMinutes != nil {
		resp.ActualWaitMinutes = *entry.ActualWaitMinutes
	}
	return resp, nil
}

// startConsultation переводит запись called -> in_consultation и фиксирует
// фактическое время ожидания пациента
func (uc *UseCase) startConsultation(ctx context.Context, entry *domain.QueueEntry, now time.Time) error {
	if !entry.Status.CanTransitionTo(domain.QueueStatusInConsultation) {
		uc.logger.Warn("UpdateQueueEntry: entry id=%d in status %s cannot start consultation", entry.ID, entry.Status)
		return ErrInvalidStatusTransition
	}

	entry.Status = domain.QueueStatusInConsultation
	entry.ConsultationStartTime = &now
	waited := int(now.Sub(entry.CheckInTime).Minutes())
	if waited < 0 {
		waited = 0
	}
	entry.ActualWaitMinutes = &waited

	return uc.transitionAppointment(ctx, entry.AppointmentID, domain.StatusInProgress)
}

// completeConsultation переводит запись in_consultation -> completed и
// пополняет скользящую среднюю длительность консультаций врача
func (uc *UseCase) completeConsultation(ctx context.Context, entry *domain.QueueEntry, now time.Time) error {
	if !entry.Status.CanTransitionTo(domain.QueueStatusCompleted) {
		uc.logger.Warn("UpdateQueueEntry: entry id=%d in status %s cannot be completed", entry.ID, entry.Status)
		return ErrInvalidStatusTransition
	}

	entry.Status = domain.QueueStatusCompleted
	entry.ConsultationEndTime = &now

	if minutes := entry.ConsultationMinutes(); minutes > 0 {
		if err := uc.stats.RecordConsultation(ctx, entry.DoctorID, minutes); err != nil {
			uc.logger.Error("UpdateQueueEntry: failed to record consultation stats: %v", err)
			return fmt.Errorf("%w: failed to record consultation stats: %v", ErrInternal, err)
		}
	}

	return uc.transitionAppointment(ctx, entry.AppointmentID, domain.StatusCompleted)
}

// skipEntry возвращает вызванного, но не подошедшего пациента в хвост очереди:
// приоритет обнуляется, время чек-ина переустанавливается
func (uc *UseCase) skipEntry(ctx context.Context, entry *domain.QueueEntry, now time.Time) error {
	if !entry.Status.CanTransitionTo(domain.QueueStatusWaiting) {
		uc.logger.Warn("UpdateQueueEntry: entry id=%d in status %s cannot be skipped", entry.ID, entry.Status)
		return ErrInvalidStatusTransition
	}

	entry.Status = domain.QueueStatusWaiting
	entry.Priority = 0
	entry.CheckInTime = now
	entry.CalledTime = nil
	entry.SkipCount++

	return nil
}

// markNoShow закрывает запись пациента, не явившегося после вызова
func (uc *UseCase) markNoShow(ctx context.Context, entry *domain.QueueEntry) error {
	if !entry.Status.CanTransitionTo(domain.QueueStatusNoShow) {
		uc.logger.Warn("UpdateQueueEntry: entry id=%d in status %s cannot be marked no-show", entry.ID, entry.Status)
		return ErrInvalidStatusTransition
	}

	entry.Status = domain.QueueStatusNoShow

	return uc.transitionAppointment(ctx, entry.AppointmentID, domain.StatusNoShow)
}

func (uc *UseCase) transitionAppointment(ctx context.Context, appointmentID int64, target domain.AppointmentStatus) error {
	apt, err := uc.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("UpdateQueueEntry: appointment id=%d not found", appointmentID)
			return ErrEntryNotFound
		}
		uc.logger.Error("UpdateQueueEntry: failed to get appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if !apt.Status.CanTransitionTo(target) {
		uc.logger.Warn("UpdateQueueEntry: appointment id=%d in status %s cannot move to %s", apt.ID, apt.Status, target)
		return ErrInvalidStatusTransition
	}

	if err := uc.appointments.UpdateStatus(ctx, apt.ID, apt.Version, target); err != nil {
		if errors.Is(err, aptRepo.ErrStaleWrite) {
			uc.logger.Warn("UpdateQueueEntry: appointment id=%d was modified concurrently", apt.ID)
			return ErrStaleWrite
		}
		uc.logger.Error("UpdateQueueEntry: failed to update appointment id=%d status: %v", apt.ID, err)
		return fmt.Errorf("%w: failed to update appointment status: %v", ErrInternal, err)
	}

	return nil
}
