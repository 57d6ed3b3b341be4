package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
)

// UseCase use case для получения доступных слотов врача на дату
type UseCase struct {
	ruleRepo     ScheduleRuleRepository
	aptRepo      AppointmentRepository
	doctorClient DoctorServiceClient
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ruleRepo ScheduleRuleRepository,
	aptRepo AppointmentRepository,
	doctorClient DoctorServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		ruleRepo:     ruleRepo,
		aptRepo:      aptRepo,
		doctorClient: doctorClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Слоты не хранятся в БД: они каждый раз выводятся из действующих правил
// расписания и активных записей на приём.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: doctor=%d, date=%s",
		req.DoctorID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем профиль врача
	doctor, err := uc.doctorClient.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			uc.logger.Warn("GetAvailableSlots: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 3. Проверяем отпуск: день в отпуске не имеет слотов независимо от расписания
	onLeave, err := uc.doctorClient.IsOnLeave(ctx, req.DoctorID, req.Date.Format(domain.DateFormat))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to check leave for doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to check leave: %v", ErrInternal, err)
	}
	if onLeave {
		uc.logger.Info("GetAvailableSlots: doctor id=%d is on leave on %s",
			req.DoctorID, req.Date.Format(domain.DateFormat))
		return &Response{
			DoctorID:   req.DoctorID,
			DoctorName: doctor.Name,
			Date:       req.Date,
			OnLeave:    true,
			Slots:      []Slot{},
		}, nil
	}

	// 4. Получаем активные правила расписания врача
	rules, err := uc.ruleRepo.GetByDoctorID(ctx, req.DoctorID, true)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get schedule rules for doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get schedule rules: %v", ErrInternal, err)
	}

	// 5. Раскрываем правила, действующие на дату, в слоты.
	// Некорректное правило не роняет весь день: логируем и пропускаем.
	slotLists := make([][]Slot, 0, len(rules))
	for _, rule := range rules {
		if !rule.AppliesTo(req.Date) {
			continue
		}
		if err := rule.Validate(); err != nil {
			uc.logger.Warn("GetAvailableSlots: skipping malformed rule id=%d: %v", rule.ID, err)
			continue
		}

		ruleSlots, err := expandRuleSlots(rule)
		if err != nil {
			uc.logger.Warn("GetAvailableSlots: skipping rule id=%d, slot expansion failed: %v", rule.ID, err)
			continue
		}
		slotLists = append(slotLists, ruleSlots)
	}

	slots := mergeSlots(slotLists...)

	// 6. Помечаем занятые слоты по активным записям
	appointments, err := uc.aptRepo.GetByDoctorAndDate(ctx, req.DoctorID, req.Date.Format(domain.DateFormat), true)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	slots = markOccupied(slots, appointments)

	uc.logger.Info("GetAvailableSlots: generated %d slots for doctor=%d, date=%s",
		len(slots), req.DoctorID, req.Date.Format(domain.DateFormat))

	return &Response{
		DoctorID:   req.DoctorID,
		DoctorName: doctor.Name,
		Date:       req.Date,
		OnLeave:    false,
		Slots:      slots,
	}, nil
}
