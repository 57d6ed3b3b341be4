package check_in

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	queueRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/queueentry"
)

// UseCase use case чек-ина пациента: подтверждённая запись на приём
// превращается в позицию живой очереди врача
type UseCase struct {
	appointments AppointmentRepository
	queue        QueueRepository
	stats        StatsRepository
	auditRepo    AuditRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	policy       Policy
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	queue QueueRepository,
	stats StatsRepository,
	auditRepo AuditRepository,
	txManager TransactionManager,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		queue:        queue,
		stats:        stats,
		auditRepo:    auditRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		policy:       policy,
		logger:       logger,
	}
}

// Execute выполняет use case чек-ина
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckIn: appointment=%d, priority=%d", req.AppointmentID, req.Priority)

	// 1. Валидация входных данных
	if req.AppointmentID <= 0 {
		uc.logger.Warn("CheckIn: invalid appointment id %d", req.AppointmentID)
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}
	if req.Priority < 0 {
		return nil, fmt.Errorf("%w: priority must not be negative", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var entry *domain.QueueEntry
	var apt *domain.Appointment

	// 2. Чек-ин выполняется в сериализуемой транзакции: переходы статусов
	// записи, вставка в очередь и пересчёт позиций должны быть атомарны
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		apt, err = uc.appointments.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("CheckIn: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CheckIn: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 2.1. Чек-ин возможен только в день приёма
		if apt.Date.Format(domain.DateFormat) != now.Format(domain.DateFormat) {
			uc.logger.Warn("CheckIn: appointment id=%d is for %s, today is %s",
				apt.ID, apt.Date.Format(domain.DateFormat), now.Format(domain.DateFormat))
			return ErrWrongDay
		}

		// 2.2. Переходы confirmed -> checked_in -> in_queue по таблице переходов
		if !apt.Status.CanTransitionTo(domain.StatusCheckedIn) {
			uc.logger.Warn("CheckIn: appointment id=%d in status %s cannot be checked in", apt.ID, apt.Status)
			return ErrInvalidStatusTransition
		}

		if err := uc.appointments.UpdateStatus(txCtx, apt.ID, apt.Version, domain.StatusCheckedIn); err != nil {
			return uc.mapStatusErr(err, apt.ID)
		}
		if err := uc.appointments.UpdateStatus(txCtx, apt.ID, apt.Version+1, domain.StatusInQueue); err != nil {
			return uc.mapStatusErr(err, apt.ID)
		}

		// 2.3. Вставляем запись очереди
		dateStr := apt.Date.Format(domain.DateFormat)
		created, err := uc.queue.Create(txCtx, &domain.QueueEntry{
			HospitalID:    uc.policy.HospitalID,
			DoctorID:      apt.DoctorID,
			AppointmentID: apt.ID,
			PatientID:     apt.PatientID,
			PatientName:   apt.PatientName,
			QueueDate:     apt.Date,
			TokenNumber:   apt.TokenNumber,
			TokenDisplay:  fmt.Sprintf("%s-%03d", uc.policy.TokenDisplayPrefix, apt.TokenNumber),
			Status:        domain.QueueStatusWaiting,
			Priority:      req.Priority,
			CheckInTime:   now,
		})
		if err != nil {
			if errors.Is(err, queueRepo.ErrDuplicateEntry) {
				uc.logger.Warn("CheckIn: appointment id=%d already checked in", apt.ID)
				return ErrAlreadyCheckedIn
			}
			uc.logger.Error("CheckIn: failed to create queue entry: %v", err)
			return fmt.Errorf("%w: failed to create queue entry: %v", ErrInternal, err)
		}

		// 2.4. Пересчитываем плотные позиции и оцениваем ожидание
		if err := uc.queue.RecomputePositions(txCtx, apt.DoctorID, dateStr); err != nil {
			uc.logger.Error("CheckIn: failed to recompute positions: %v", err)
			return fmt.Errorf("%w: failed to recompute positions: %v", ErrInternal, err)
		}

		entry, err = uc.queue.GetByAppointmentID(txCtx, apt.ID)
		if err != nil {
			uc.logger.Error("CheckIn: failed to reload queue entry: %v", err)
			return fmt.Errorf("%w: failed to reload queue entry: %v", ErrInternal, err)
		}

		avg, err := uc.stats.AvgConsultationMinutes(txCtx, apt.DoctorID)
		if err != nil {
			uc.logger.Error("CheckIn: failed to get consultation average: %v", err)
			return fmt.Errorf("%w: failed to get consultation average: %v", ErrInternal, err)
		}

		entry.EstimatedWaitMinutes = (entry.Position - 1) * avg
		if entry.EstimatedWaitMinutes < 0 {
			entry.EstimatedWaitMinutes = 0
		}
		if err := uc.queue.Update(txCtx, entry); err != nil {
			uc.logger.Error("CheckIn: failed to store wait estimate: %v", err)
			return fmt.Errorf("%w: failed to store wait estimate: %v", ErrInternal, err)
		}

		// 2.5. Журнал аудита
		oldStatus := string(apt.Status)
		newStatus := string(domain.StatusInQueue)
		record := &domain.AuditRecord{
			HospitalID:  uc.policy.HospitalID,
			EntityType:  domain.AuditEntityQueueEntry,
			EntityID:    created.ID,
			Action:      domain.AuditActionCreate,
			Description: fmt.Sprintf("patient checked in, token %s, position %d", entry.TokenDisplay, entry.Position),
			Actor:       "reception",
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("CheckIn: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CheckIn: appointment id=%d checked in, entry id=%d, position=%d, est wait=%dm",
		apt.ID, entry.ID, entry.Position, entry.EstimatedWaitMinutes)

	return &Response{
		EntryID:              entry.ID,
		AppointmentID:        apt.ID,
		DoctorID:             apt.DoctorID,
		PatientName:          apt.PatientName,
		TokenNumber:          entry.TokenNumber,
		TokenDisplay:         entry.TokenDisplay,
		Position:             entry.Position,
		Status:               string(entry.Status),
		Priority:             entry.Priority,
		CheckInTime:          entry.CheckInTime,
		EstimatedWaitMinutes: entry.EstimatedWaitMinutes,
	}, nil
}

func (uc *UseCase) mapStatusErr(err error, id int64) error {
	if errors.Is(err, aptRepo.ErrStaleWrite) {
		uc.logger.Warn("CheckIn: appointment id=%d was modified concurrently", id)
		return ErrStaleWrite
	}
	if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
		return ErrAppointmentNotFound
	}
	uc.logger.Error("CheckIn: failed to update appointment id=%d status: %v", id, err)
	return fmt.Errorf("%w: failed to update appointment status: %v", ErrInternal, err)
}
