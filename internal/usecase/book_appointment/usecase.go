package book_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
	"github.com/m04kA/HMS-AppointmentService/internal/integrations/billingservice"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
)

// UseCase use case бронирования записи на приём.
// Всё, что касается занятости слота и выдачи номеров, выполняется в одной
// сериализуемой транзакции: проверка расписания, блокировка записей дня,
// счётчики талонов и вставка записи.
type UseCase struct {
	aptRepo       AppointmentRepository
	ruleRepo      ScheduleRuleRepository
	auditRepo     AuditRepository
	doctorClient  DoctorServiceClient
	billingClient BillingServiceClient
	smsClient     SmsGatewayClient
	sessions      SessionStore
	txManager     TransactionManager
	timeProvider  TimeProvider
	policy        Policy
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	aptRepo AppointmentRepository,
	ruleRepo ScheduleRuleRepository,
	auditRepo AuditRepository,
	doctorClient DoctorServiceClient,
	billingClient BillingServiceClient,
	smsClient SmsGatewayClient,
	sessions SessionStore,
	txManager TransactionManager,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		aptRepo:       aptRepo,
		ruleRepo:      ruleRepo,
		auditRepo:     auditRepo,
		doctorClient:  doctorClient,
		billingClient: billingClient,
		smsClient:     smsClient,
		sessions:      sessions,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		policy:        policy,
		logger:        logger,
	}
}

// Execute выполняет use case бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: doctor=%d, patient=%d, date=%s, slot=%s, source=%s",
		req.DoctorID, req.PatientID, req.Date.Format(domain.DateFormat), req.SlotStart, req.BookingSource)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Гостевой поток: потребляем подтверждённую OTP сессию до транзакции.
	// Сессия удаляется атомарно, второй раз тем же подтверждением
	// воспользоваться нельзя. Если бронирование дальше сорвётся, сессия
	// возвращается на место: гостю не придётся проходить верификацию заново.
	var otpSession *sessionstore.OtpSession
	if req.PatientID == 0 {
		session, err := uc.consumeOtpSession(ctx, req)
		if err != nil {
			return nil, err
		}
		otpSession = session
	}

	booked := false
	defer func() {
		if otpSession != nil && !booked {
			uc.restoreOtpSession(ctx, otpSession)
		}
	}()

	// 3. Получаем профиль врача и снимок тарифа консультации
	doctor, err := uc.doctorClient.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("BookAppointment: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("BookAppointment: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}
	if !doctor.Active {
		uc.logger.Warn("BookAppointment: doctor id=%d is not active", req.DoctorID)
		return nil, ErrDoctorUnavailable
	}

	// 4. Проверяем отпуск врача на дату
	dateStr := req.Date.Format(domain.DateFormat)
	onLeave, err := uc.doctorClient.IsOnLeave(ctx, req.DoctorID, dateStr)
	if err != nil {
		uc.logger.Error("BookAppointment: failed to check leave for doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to check leave: %v", ErrInternal, err)
	}
	if onLeave {
		uc.logger.Warn("BookAppointment: doctor id=%d is on leave on %s", req.DoctorID, dateStr)
		return nil, ErrDoctorUnavailable
	}

	var result *domain.Appointment

	// 5. Выполняем бронирование в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Слот должен порождаться действующим правилом расписания
		rules, err := uc.ruleRepo.GetByDoctorID(txCtx, req.DoctorID, true)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get schedule rules: %v", err)
			return fmt.Errorf("%w: failed to get schedule rules: %v", ErrInternal, err)
		}

		rule, slotEnd, found := findCoveringRule(rules, req.Date, req.SlotStart)
		if !found {
			uc.logger.Warn("BookAppointment: slot %s is not in schedule of doctor id=%d on %s",
				req.SlotStart, req.DoctorID, dateStr)
			return ErrSlotNotInSchedule
		}

		// 5.2. Блокируем записи врача на дату (FOR UPDATE) и проверяем занятость
		appointments, err := uc.aptRepo.GetByDoctorAndDate(txCtx, req.DoctorID, dateStr, true)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		for _, apt := range appointments {
			if apt.SlotStart == req.SlotStart {
				uc.logger.Warn("BookAppointment: slot %s already taken by appointment id=%d", req.SlotStart, apt.ID)
				return ErrSlotTaken
			}
		}

		if countRuleAppointments(rule, appointments) >= rule.MaxAppointments {
			uc.logger.Warn("BookAppointment: session of doctor id=%d on %s is full (%d appointments)",
				req.DoctorID, dateStr, rule.MaxAppointments)
			return ErrSlotTaken
		}

		// 5.3. Выдаём номер записи и номер талона из атомарных счётчиков.
		// Оба инкремента идут в этой же транзакции: откат бронирования
		// откатывает и счётчики, дыр в нумерации не бывает.
		year := uc.timeProvider.Now().Year()
		seq, err := uc.aptRepo.NextAppointmentSequence(txCtx, year)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get appointment sequence: %v", err)
			return fmt.Errorf("%w: failed to get appointment sequence: %v", ErrInternal, err)
		}

		token, err := uc.aptRepo.NextTokenNumber(txCtx, req.DoctorID, dateStr)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to get token number: %v", err)
			return fmt.Errorf("%w: failed to get token number: %v", ErrInternal, err)
		}

		fee := doctor.ConsultationFee
		if rule.Teleconsultation {
			fee = doctor.TeleconsultationFee
		}

		apt := &domain.Appointment{
			AppointmentNumber: fmt.Sprintf("%s%d%06d", domain.AppointmentNumberPrefix, year, seq),
			HospitalID:        uc.policy.HospitalID,
			DoctorID:          req.DoctorID,
			DoctorName:        doctor.Name,
			PatientID:         req.PatientID,
			PatientName:       req.PatientName,
			PatientMobile:     req.PatientMobile,
			Date:              req.Date,
			SlotStart:         req.SlotStart,
			SlotEnd:           slotEnd,
			Status:            domain.StatusScheduled,
			TokenNumber:       token,
			Teleconsultation:  rule.Teleconsultation,
			ConsultationFee:   fee,
			BookingSource:     req.BookingSource,
			ChiefComplaint:    req.ChiefComplaint,
			BookingNotes:      req.BookingNotes,
		}

		created, err := uc.aptRepo.Create(txCtx, apt)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 5.4. Журнал аудита
		newStatus := string(created.Status)
		record := &domain.AuditRecord{
			HospitalID:  created.HospitalID,
			EntityType:  domain.AuditEntityAppointment,
			EntityID:    created.ID,
			Action:      domain.AuditActionCreate,
			Description: fmt.Sprintf("appointment %s booked, slot %s, token %d", created.AppointmentNumber, created.SlotStart, created.TokenNumber),
			Actor:       auditActor(req),
			NewStatus:   &newStatus,
		}
		if err := uc.auditRepo.Create(txCtx, record); err != nil {
			uc.logger.Error("BookAppointment: failed to write audit record: %v", err)
			return fmt.Errorf("%w: failed to write audit record: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Ожидание блокировки исчерпало лимит: слот дорешивается другим запросом
		if errors.Is(err, txmanager.ErrLockTimeout) {
			uc.logger.Warn("BookAppointment: lock timeout for doctor=%d, date=%s, slot=%s",
				req.DoctorID, dateStr, req.SlotStart)
			return nil, ErrBookingTimeout
		}
		return nil, err
	}

	booked = true

	uc.logger.Info("BookAppointment: created appointment id=%d, number=%s, token=%d",
		result.ID, result.AppointmentNumber, result.TokenNumber)

	resp := uc.buildResponse(result)

	// 6. Гостевой токен доступа к записи
	if result.IsGuest() {
		accessToken := uuid.NewString()
		if err := uc.sessions.PutAccessToken(ctx, accessToken, result.ID, uc.policy.GuestTokenTTL); err != nil {
			uc.logger.Error("BookAppointment: failed to store guest access token for appointment id=%d: %v",
				result.ID, err)
		} else {
			resp.GuestAccessToken = accessToken
		}
	}

	// 7. Постфактум: счёт в биллинг и SMS подтверждение.
	// Недоступность внешних сервисов не роняет уже созданную запись.
	charge := &billingservice.ConsultationCharge{
		AppointmentID:     result.ID,
		AppointmentNumber: result.AppointmentNumber,
		HospitalID:        result.HospitalID,
		DoctorID:          result.DoctorID,
		PatientID:         result.PatientID,
		PatientMobile:     result.PatientMobile,
		Amount:            result.ConsultationFee,
		Teleconsultation:  result.Teleconsultation,
	}
	if err := uc.billingClient.EmitConsultationCharge(ctx, charge); err != nil {
		uc.logger.Error("BookAppointment: failed to emit consultation charge for appointment id=%d: %v",
			result.ID, err)
	}

	if err := uc.smsClient.SendBookingConfirmation(ctx, result.PatientMobile, result.AppointmentNumber, resp.TokenDisplay); err != nil {
		uc.logger.Warn("BookAppointment: failed to send confirmation sms for appointment id=%d: %v",
			result.ID, err)
	}

	return resp, nil
}

// consumeOtpSession потребляет подтверждённую OTP сессию гостя
func (uc *UseCase) consumeOtpSession(ctx context.Context, req *Request) (*sessionstore.OtpSession, error) {
	session, err := uc.sessions.ConsumeVerified(ctx, req.OtpSessionID, req.PatientMobile)
	if err == nil {
		return session, nil
	}

	switch {
	case errors.Is(err, sessionstore.ErrSessionNotFound), errors.Is(err, sessionstore.ErrSessionExpired):
		uc.logger.Warn("BookAppointment: otp session %s expired or not found", req.OtpSessionID)
		return nil, ErrOtpExpired
	case errors.Is(err, sessionstore.ErrNotVerified), errors.Is(err, sessionstore.ErrMobileMismatch):
		uc.logger.Warn("BookAppointment: otp session %s verification mismatch", req.OtpSessionID)
		return nil, ErrOtpMismatch
	default:
		uc.logger.Error("BookAppointment: failed to consume otp session %s: %v", req.OtpSessionID, err)
		return nil, fmt.Errorf("%w: failed to consume otp session: %v", ErrInternal, err)
	}
}

// restoreOtpSession возвращает снятую OTP сессию гостя после неудачного бронирования
func (uc *UseCase) restoreOtpSession(ctx context.Context, session *sessionstore.OtpSession) {
	if err := uc.sessions.PutOtp(ctx, session); err != nil {
		uc.logger.Error("BookAppointment: failed to restore otp session %s: %v", session.ID, err)
	}
}

func (uc *UseCase) buildResponse(apt *domain.Appointment) *Response {
	return &Response{
		ID:                apt.ID,
		AppointmentNumber: apt.AppointmentNumber,
		HospitalID:        apt.HospitalID,
		DoctorID:          apt.DoctorID,
		DoctorName:        apt.DoctorName,
		PatientID:         apt.PatientID,
		PatientName:       apt.PatientName,
		PatientMobile:     apt.PatientMobile,
		Date:              apt.Date,
		SlotStart:         apt.SlotStart,
		SlotEnd:           apt.SlotEnd,
		Status:            string(apt.Status),
		TokenNumber:       apt.TokenNumber,
		TokenDisplay:      fmt.Sprintf("%s-%03d", uc.policy.TokenDisplayPrefix, apt.TokenNumber),
		Teleconsultation:  apt.Teleconsultation,
		ConsultationFee:   apt.ConsultationFee,
		BookingSource:     apt.BookingSource,
		ChiefComplaint:    apt.ChiefComplaint,
		BookingNotes:      apt.BookingNotes,
		CreatedAt:         apt.CreatedAt,
	}
}

// auditActor определяет инициатора для журнала аудита
func auditActor(req *Request) string {
	if req.PatientID == 0 {
		return "guest:" + req.PatientMobile
	}
	return fmt.Sprintf("patient:%d", req.PatientID)
}
