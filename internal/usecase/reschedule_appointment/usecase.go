package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
)

// UseCase use case переноса записи на новый слот.
// Перенос не мутирует исходную запись по месту: старая запись получает
// терминальный статус rescheduled, а на новый слот создаётся свежая запись
// со ссылкой на предыдущую. Обе операции идут в одной сериализуемой транзакции.
type UseCase struct {
	appointments AppointmentRepository
	ruleRepo     ScheduleRuleRepository
	auditRepo    AuditRepository
	doctorClient DoctorServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	policy       Policy
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	ruleRepo ScheduleRuleRepository,
	auditRepo AuditRepository,
	doctorClient DoctorServiceClient,
	txManager TransactionManager,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		ruleRepo:     ruleRepo,
		auditRepo:    auditRepo,
		doctorClient: doctorClient,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		policy:       policy,
		logger:       logger,
	}
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%d, actor=%d, newDate=%s, newSlot=%s",
		req.AppointmentID, req.ActorPatientID, req.NewDate.Format(domain.DateFormat), req.NewSlotStart)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем исходную запись и проверяем предусловия вне транзакции
	// (окончательная проверка повторится внутри через CAS по версии)
	original, err := uc.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if req.ActorPatientID != 0 && original.PatientID != req.ActorPatientID {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d belongs to patient %d, actor %d",
			req.AppointmentID, original.PatientID, req.ActorPatientID)
		return nil, ErrForbidden
	}

	if !original.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d in status %s cannot be rescheduled",
			req.AppointmentID, original.Status)
		return nil, ErrInvalidStatusTransition
	}

	if original.RescheduleCount >= uc.policy.MaxReschedules {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d reached reschedule limit %d",
			req.AppointmentID, uc.policy.MaxReschedules)
		return nil, ErrRescheduleLimitExceeded
	}

	// 3. Проверяем доступность врача на новую дату
	dateStr := req.NewDate.Format(domain.DateFormat)
	doctor, err := uc.doctorClient.GetDoctor(ctx, original.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("RescheduleAppointment: doctor id=%d no longer exists", original.DoctorID)
			return nil, ErrDoctorUnavailable
		}
		uc.logger.Error("RescheduleAppointment: failed to get doctor id=%d: %v", original.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}
	if !doctor.Active {
		return nil, ErrDoctorUnavailable
	}

	onLeave, err := uc.doctorClient.IsOnLeave(ctx, original.DoctorID, dateStr)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to check leave for doctor id=%d: %v", original.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to check leave: %v", ErrInternal, err)
	}
	if onLeave {
		uc.logger.Warn("RescheduleAppointment: doctor id=%d is on leave on %s", original.DoctorID, dateStr)
		return nil, ErrDoctorUnavailable
	}

	var result *domain.Appointment

	// 4. Выполняем перенос в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Новый слот должен порождаться действующим правилом расписания
		rules, err := uc.ruleRepo.GetByDoctorID(txCtx, original.DoctorID, true)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get schedule rules: %v", err)
			return fmt.Errorf("%w: failed to get schedule rules: %v", ErrInternal, err)
		}

		rule, slotEnd, found := findCoveringRule(rules, req.NewDate, req.NewSlotStart)
		if !found {
			uc.logger.Warn("RescheduleAppointment: slot %s is not in schedule of doctor id=%d on %s",
				req.NewSlotStart, original.DoctorID, dateStr)
			return ErrSlotNotInSchedule
		}

		// 4.2. Блокируем записи врача на новую дату и проверяем занятость
		appointments, err := uc.appointments.GetByDoctorAndDate(txCtx, original.DoctorID, dateStr, true)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		for _, apt := range appointments {
			if apt.ID == original.ID {
				continue
			}
			if apt.SlotStart == req.NewSlotStart {
				uc.logger.Warn("RescheduleAppointment: slot %s already taken by appointment id=%d",
					req.NewSlotStart, apt.ID)
				return ErrSlotTaken
			}
		}

		if countRuleAppointments(rule, appointments) >= rule.MaxAppointments {
			uc.logger.Warn("RescheduleAppointment: session of doctor id=%d on %s is full", original.DoctorID, dateStr)
			return ErrSlotTaken
		}

		// 4.3. Закрываем старую запись через CAS: если её успели изменить,
		// перенос отклоняется со stale write
		if err := uc.appointments.UpdateStatus(txCtx, original.ID, original.Version, domain.StatusRescheduled); err != nil {
			if errors.Is(err, aptRepo.ErrStaleWrite) {
				uc.logger.Warn("RescheduleAppointment: appointment id=%d was modified concurrently", original.ID)
				return ErrStaleWrite
			}
			if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			uc.logger.Error("RescheduleAppointment: failed to close original appointment: %v", err)
			return fmt.Errorf("%w: failed to close original appointment: %v", ErrInternal, err)
		}

		// 4.4. Создаём новую запись с новым номером и талоном
		year := uc.timeProvider.Now().Year()
		seq, err := uc.appointments.NextAppointmentSequence(txCtx, year)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointment sequence: %v", err)
			return fmt.Errorf("%w: failed to get appointment sequence: %v", ErrInternal, err)
		}

		token, err := uc.appointments.NextTokenNumber(txCtx, original.DoctorID, dateStr)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get token number: %v", err)
			return fmt.Errorf("%w: failed to get token number: %v", ErrInternal, err)
		}

		fee := doctor.ConsultationFee
		if rule.Teleconsultation {
			fee = doctor.TeleconsultationFee
		}

		previousID := original.ID
		replacement := &domain.Appointment{
			AppointmentNumber:     fmt.Sprintf("%s%d%06d", domain.AppointmentNumberPrefix, year, seq),
			HospitalID:            uc.policy.HospitalID,
			DoctorID:              original.DoctorID,
			DoctorName:            doctor.Name,
			PatientID:             original.PatientID,
			PatientName:           original.PatientName,
			PatientMobile:         original.PatientMobile,
			Date:                  req.NewDate,
			SlotStart:             req.NewSlotStart,
			SlotEnd:               slotEnd,
			Status:                domain.StatusScheduled,
			TokenNumber:           token,
			Teleconsultation:      rule.Teleconsultation,
			ConsultationFee:       fee,
			BookingSource:         original.BookingSource,
			ChiefComplaint:        original.ChiefComplaint,
			BookingNotes:          original.BookingNotes,
			RescheduleCount:       original.RescheduleCount + 1,
			PreviousAppointmentID: &previousID,
		}

		created, err := uc.appointments.Create(txCtx, replacement)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to create replacement appointment: %v", err)
			return fmt.Errorf("%w: failed to create replacement appointment: %v", ErrInternal, err)
		}

		// 4.5. Журнал аудита для обеих записей
		oldStatus := string(original.Status)
		rescheduledStatus := string(domain.StatusRescheduled)
		scheduledStatus := string(domain.StatusScheduled)

		record := &domain.AuditRecord{
			HospitalID:  uc.policy.HospitalID,
			EntityType:  domain.AuditEntityAppointment,
			EntityID:    original.ID,
			Action:      domain.AuditActionReschedule,
			Description: fmt.Sprintf("appointment %s rescheduled to %s", original.AppointmentNumber, created.AppointmentNumber),
			Actor:       auditActor(req, original),
			OldStatus:   &oldStatus,
			NewStatus:   &rescheduledStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		record = &domain.AuditRecord{
			HospitalID:  uc.policy.HospitalID,
			EntityType:  domain.AuditEntityAppointment,
			EntityID:    created.ID,
			Action:      domain.AuditActionCreate,
			Description: fmt.Sprintf("appointment %s created by reschedule of %s", created.AppointmentNumber, original.AppointmentNumber),
			Actor:       auditActor(req, original),
			NewStatus:   &scheduledStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrLockTimeout) {
			uc.logger.Warn("RescheduleAppointment: lock timeout for appointment id=%d", req.AppointmentID)
			return nil, ErrBookingTimeout
		}
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: appointment id=%d rescheduled to id=%d (number=%s)",
		original.ID, result.ID, result.AppointmentNumber)

	return &Response{
		ID:                    result.ID,
		AppointmentNumber:     result.AppointmentNumber,
		DoctorID:              result.DoctorID,
		DoctorName:            result.DoctorName,
		PatientID:             result.PatientID,
		PatientName:           result.PatientName,
		Date:                  result.Date,
		SlotStart:             result.SlotStart,
		SlotEnd:               result.SlotEnd,
		Status:                string(result.Status),
		TokenNumber:           result.TokenNumber,
		TokenDisplay:          fmt.Sprintf("%s-%03d", uc.policy.TokenDisplayPrefix, result.TokenNumber),
		RescheduleCount:       result.RescheduleCount,
		PreviousAppointmentID: original.ID,
		CreatedAt:             result.CreatedAt,
	}, nil
}

// auditActor определяет инициатора для журнала аудита
func auditActor(req *Request, original *domain.Appointment) string {
	if req.ActorPatientID != 0 {
		return fmt.Sprintf("patient:%d", req.ActorPatientID)
	}
	if original.IsGuest() {
		return "guest:" + original.PatientMobile
	}
	return "staff"
}
