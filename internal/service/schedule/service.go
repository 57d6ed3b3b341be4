package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/schedulerule"
	doctorClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule/models"
)

// Service сервис для работы с расписаниями врачей
type Service struct {
	ruleRepo     ScheduleRuleRepository
	doctorClient DoctorServiceClient
	auditRepo    AuditRepository
	hospitalID   int64
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	ruleRepo ScheduleRuleRepository,
	doctorClient DoctorServiceClient,
	auditRepo AuditRepository,
	hospitalID int64,
	logger Logger,
) *Service {
	return &Service{
		ruleRepo:     ruleRepo,
		doctorClient: doctorClient,
		auditRepo:    auditRepo,
		hospitalID:   hospitalID,
		logger:       logger,
	}
}

// AddRule создает новое правило расписания врача
// Проверяет существование врача и отсутствие пересечений с действующими правилами
func (s *Service) AddRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("AddRule: creating rule for doctor=%d, %s-%s", req.DoctorID, req.StartTime, req.EndTime)

	// 1. Конвертируем request в domain модель
	rule, err := req.ToDomainRule(s.hospitalID)
	if err != nil {
		s.logger.Warn("AddRule: invalid request for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Валидируем инварианты правила
	if err := rule.Validate(); err != nil {
		s.logger.Warn("AddRule: validation failed for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Проверяем существование врача
	if _, err := s.doctorClient.GetDoctor(ctx, req.DoctorID); err != nil {
		if errors.Is(err, doctorClient.ErrDoctorNotFound) {
			s.logger.Warn("AddRule: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("AddRule: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: AddRule - failed to get doctor: %v", ErrInternal, err)
	}

	// 4. Проверяем пересечения с действующими правилами врача
	existing, err := s.ruleRepo.GetByDoctorID(ctx, req.DoctorID, true)
	if err != nil {
		s.logger.Error("AddRule: repository error for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: AddRule - repository error: %v", ErrInternal, err)
	}
	for _, other := range existing {
		if rule.OverlapsWith(other) {
			s.logger.Warn("AddRule: rule for doctor=%d conflicts with rule id=%d", req.DoctorID, other.ID)
			return nil, fmt.Errorf("%w: overlaps with rule id=%d", ErrScheduleConflict, other.ID)
		}
	}

	// 5. Создаем правило
	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("AddRule: failed to create rule for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: AddRule - failed to create rule: %v", ErrInternal, err)
	}

	s.writeAudit(ctx, created.ID, domain.AuditActionCreate,
		fmt.Sprintf("schedule rule created for doctor %d: %s-%s", created.DoctorID, created.StartTime, created.EndTime))

	s.logger.Info("AddRule: successfully created rule id=%d for doctor=%d", created.ID, created.DoctorID)
	return models.FromDomainRule(created), nil
}

// ListByDoctor получает правила расписания врача
// При activeOnly=true возвращает только действующие правила
func (s *Service) ListByDoctor(ctx context.Context, doctorID int64, activeOnly bool) (*models.RuleListResponse, error) {
	s.logger.Info("ListByDoctor: fetching rules for doctor=%d, activeOnly=%v", doctorID, activeOnly)

	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}

	rules, err := s.ruleRepo.GetByDoctorID(ctx, doctorID, activeOnly)
	if err != nil {
		s.logger.Error("ListByDoctor: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: ListByDoctor - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByDoctor: successfully fetched %d rules for doctor=%d", len(rules), doctorID)
	return models.FromDomainRuleList(rules), nil
}

// ListEffective получает правила врача, действующие на конкретную дату
func (s *Service) ListEffective(ctx context.Context, doctorID int64, date time.Time) (*models.RuleListResponse, error) {
	s.logger.Info("ListEffective: fetching rules for doctor=%d, date=%s", doctorID, date.Format(domain.DateFormat))

	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	rules, err := s.ruleRepo.GetByDoctorID(ctx, doctorID, true)
	if err != nil {
		s.logger.Error("ListEffective: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: ListEffective - repository error: %v", ErrInternal, err)
	}

	effective := make([]*domain.ScheduleRule, 0, len(rules))
	for _, rule := range rules {
		if rule.AppliesTo(date) {
			effective = append(effective, rule)
		}
	}

	s.logger.Info("ListEffective: %d of %d rules apply for doctor=%d on %s",
		len(effective), len(rules), doctorID, date.Format(domain.DateFormat))
	return models.FromDomainRuleList(effective), nil
}

// Deactivate деактивирует правило расписания
// Правила не удаляются физически: история бронирований должна оставаться разрешимой
func (s *Service) Deactivate(ctx context.Context, ruleID int64) error {
	s.logger.Info("Deactivate: deactivating rule id=%d", ruleID)

	if ruleID <= 0 {
		return fmt.Errorf("%w: ruleID must be positive", ErrInvalidInput)
	}

	if err := s.ruleRepo.Deactivate(ctx, ruleID); err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("Deactivate: rule id=%d not found", ruleID)
			return ErrRuleNotFound
		}
		s.logger.Error("Deactivate: repository error for rule id=%d: %v", ruleID, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	s.writeAudit(ctx, ruleID, domain.AuditActionStatusTransition, "schedule rule deactivated")

	s.logger.Info("Deactivate: successfully deactivated rule id=%d", ruleID)
	return nil
}

// writeAudit пишет запись аудита; ошибка не прерывает основную операцию
func (s *Service) writeAudit(ctx context.Context, ruleID int64, action, description string) {
	record := &domain.AuditRecord{
		HospitalID:  s.hospitalID,
		EntityType:  domain.AuditEntityScheduleRule,
		EntityID:    ruleID,
		Action:      action,
		Description: description,
		Actor:       "hospital",
	}
	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.Error("writeAudit: failed to write audit record for rule id=%d: %v", ruleID, err)
	}
}
