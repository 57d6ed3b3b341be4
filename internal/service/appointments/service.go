package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	aptRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/sessionstore"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с записями на приём
type Service struct {
	appointmentRepo AppointmentRepository
	sessions        SessionStore
	auditRepo       AuditRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей на приём
func NewService(
	appointmentRepo AppointmentRepository,
	sessions SessionStore,
	auditRepo AuditRepository,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		sessions:        sessions,
		auditRepo:       auditRepo,
		logger:          logger,
	}
}

// GetByID получает запись на приём по ID
// Пациент может видеть только свою запись; actorPatientID=0 означает запрос персонала
func (s *Service) GetByID(ctx context.Context, id int64, actorPatientID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for patient=%d", id, actorPatientID)

	apt, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkPatientAccess(apt, actorPatientID); err != nil {
		s.logger.Warn("GetByID: access denied for patient=%d to appointment id=%d", actorPatientID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(apt), nil
}

// GetByNumber получает запись на приём по номеру APT<год><порядковый номер>
func (s *Service) GetByNumber(ctx context.Context, number string, actorPatientID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByNumber: fetching appointment number=%s for patient=%d", number, actorPatientID)

	if number == "" {
		return nil, fmt.Errorf("%w: appointment number is required", ErrInvalidInput)
	}

	apt, err := s.appointmentRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByNumber: appointment number=%s not found", number)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByNumber: repository error for number=%s: %v", number, err)
		return nil, fmt.Errorf("%w: GetByNumber - repository error: %v", ErrInternal, err)
	}

	if err := s.checkPatientAccess(apt, actorPatientID); err != nil {
		s.logger.Warn("GetByNumber: access denied for patient=%d to appointment number=%s", actorPatientID, number)
		return nil, err
	}

	return models.FromDomainAppointment(apt), nil
}

// GuestLookup получает гостевую запись по номеру мобильного и номеру записи.
// Оба значения должны совпасть, иначе запись считается не найденной.
func (s *Service) GuestLookup(ctx context.Context, mobile, number string) (*models.AppointmentResponse, error) {
	s.logger.Info("GuestLookup: fetching appointment number=%s", number)

	if mobile == "" || number == "" {
		return nil, fmt.Errorf("%w: mobile and appointment number are required", ErrInvalidInput)
	}

	apt, err := s.appointmentRepo.GetByGuestMobile(ctx, mobile, number)
	if err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GuestLookup: appointment number=%s not found for given mobile", number)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GuestLookup: repository error for number=%s: %v", number, err)
		return nil, fmt.Errorf("%w: GuestLookup - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(apt), nil
}

// GuestView получает гостевую запись по токену доступа, выданному при бронировании
func (s *Service) GuestView(ctx context.Context, accessToken string) (*models.AppointmentResponse, error) {
	s.logger.Info("GuestView: resolving guest access token")

	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidInput)
	}

	appointmentID, err := s.sessions.GetAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, sessionstore.ErrTokenNotFound) {
			s.logger.Warn("GuestView: access token not found or expired")
			return nil, ErrAccessDenied
		}
		s.logger.Error("GuestView: session store error: %v", err)
		return nil, fmt.Errorf("%w: GuestView - session store error: %v", ErrInternal, err)
	}

	apt, err := s.getAppointment(ctx, "GuestView", appointmentID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainAppointment(apt), nil
}

// GetPatientAppointments получает историю записей пациента
// Опционально фильтрует по статусу
func (s *Service) GetPatientAppointments(ctx context.Context, req *models.GetPatientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetPatientAppointments: fetching appointments for patient=%d, status=%v", req.PatientID, req.Status)

	if req.PatientID <= 0 {
		return nil, fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}

	filter := domain.AppointmentFilter{PatientID: &req.PatientID}
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetPatientAppointments: invalid status=%s for patient=%d", *req.Status, req.PatientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	appointments, err := s.appointmentRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetPatientAppointments: repository error for patient=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: GetPatientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPatientAppointments: successfully fetched %d appointments for patient=%d", len(appointments), req.PatientID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetDoctorAppointments получает записи врача на дату
// Поддерживает фильтрацию по статусу и выборку только активных записей
func (s *Service) GetDoctorAppointments(ctx context.Context, req *models.GetDoctorAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetDoctorAppointments: fetching appointments for doctor=%d, date=%s",
		req.DoctorID, req.Date.Format(domain.DateFormat))

	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	filter := domain.AppointmentFilter{
		DoctorID:   &req.DoctorID,
		Date:       &req.Date,
		ActiveOnly: req.ActiveOnly,
	}
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetDoctorAppointments: invalid status=%s for doctor=%d", *req.Status, req.DoctorID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	appointments, err := s.appointmentRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetDoctorAppointments: repository error for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: GetDoctorAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetDoctorAppointments: successfully fetched %d appointments for doctor=%d", len(appointments), req.DoctorID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetCounts получает счётчики записей врача на дату по статусам
func (s *Service) GetCounts(ctx context.Context, doctorID int64, date string) (*models.AppointmentCountsResponse, error) {
	s.logger.Info("GetCounts: fetching counts for doctor=%d, date=%s", doctorID, date)

	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}

	counts, err := s.appointmentRepo.CountByStatus(ctx, doctorID, date)
	if err != nil {
		s.logger.Error("GetCounts: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetCounts - repository error: %v", ErrInternal, err)
	}

	resp := &models.AppointmentCountsResponse{
		DoctorID: doctorID,
		Date:     date,
		ByStatus: make(map[string]int, len(counts)),
	}
	for status, count := range counts {
		resp.ByStatus[string(status)] = count
		resp.Total += count
	}

	return resp, nil
}

// Cancel отменяет запись на приём
// Пациент может отменить только свою запись (cancelled_by_patient),
// персонал больницы может отменить любую запись (cancelled_by_hospital)
func (s *Service) Cancel(ctx context.Context, appointmentID int64, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by patient=%d", appointmentID, req.ActorPatientID)

	apt, err := s.getAppointment(ctx, "Cancel", appointmentID)
	if err != nil {
		return err
	}

	// Проверяем, можно ли отменить запись
	if !apt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", appointmentID, apt.Status)
		return ErrCannotCancel
	}

	// Определяем статус отмены в зависимости от прав доступа
	var cancelStatus domain.AppointmentStatus
	var cancelledBy string

	if req.ActorPatientID > 0 {
		if apt.PatientID != req.ActorPatientID {
			s.logger.Warn("Cancel: access denied for patient=%d to cancel appointment id=%d", req.ActorPatientID, appointmentID)
			return ErrAccessDenied
		}
		cancelStatus = domain.StatusCancelledByPatient
		cancelledBy = fmt.Sprintf("patient:%d", req.ActorPatientID)
	} else {
		cancelStatus = domain.StatusCancelledByHospital
		cancelledBy = "hospital"
	}

	if err := s.appointmentRepo.Cancel(ctx, appointmentID, apt.Version, cancelStatus, cancelledBy, req.CancellationReason); err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Cancel: appointment id=%d not found during cancellation", appointmentID)
			return ErrAppointmentNotFound
		}
		if errors.Is(err, aptRepo.ErrStaleWrite) {
			s.logger.Warn("Cancel: appointment id=%d was modified concurrently", appointmentID)
			return ErrStaleWrite
		}
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.writeAudit(ctx, apt, domain.AuditActionCancel, cancelStatus, cancelledBy, req.CancellationReason)

	s.logger.Info("Cancel: successfully cancelled appointment id=%d with status=%s", appointmentID, cancelStatus)
	return nil
}

// Confirm подтверждает запись на приём (scheduled -> confirmed)
func (s *Service) Confirm(ctx context.Context, appointmentID int64, actorPatientID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%d by patient=%d", appointmentID, actorPatientID)

	apt, err := s.getAppointment(ctx, "Confirm", appointmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPatientAccess(apt, actorPatientID); err != nil {
		s.logger.Warn("Confirm: access denied for patient=%d to appointment id=%d", actorPatientID, appointmentID)
		return nil, err
	}

	if !apt.Status.CanTransitionTo(domain.StatusConfirmed) {
		s.logger.Warn("Confirm: appointment id=%d in status %s cannot be confirmed", appointmentID, apt.Status)
		return nil, ErrInvalidStatusTransition
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, apt.Version, domain.StatusConfirmed); err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		if errors.Is(err, aptRepo.ErrStaleWrite) {
			s.logger.Warn("Confirm: appointment id=%d was modified concurrently", appointmentID)
			return nil, ErrStaleWrite
		}
		s.logger.Error("Confirm: repository error for appointment id=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	s.writeAudit(ctx, apt, domain.AuditActionStatusTransition, domain.StatusConfirmed, "patient", "")

	apt.Status = domain.StatusConfirmed
	apt.Version++

	s.logger.Info("Confirm: successfully confirmed appointment id=%d", appointmentID)
	return models.FromDomainAppointment(apt), nil
}

// Вспомогательные методы

func (s *Service) getAppointment(ctx context.Context, method string, id int64) (*domain.Appointment, error) {
	apt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, aptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", method, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return apt, nil
}

// checkPatientAccess проверяет, что пациент имеет доступ к записи.
// actorPatientID=0 означает запрос персонала, доступ разрешён.
func (s *Service) checkPatientAccess(apt *domain.Appointment, actorPatientID int64) error {
	if actorPatientID == 0 {
		return nil
	}
	if apt.PatientID == actorPatientID {
		return nil
	}
	return ErrAccessDenied
}

// writeAudit пишет запись аудита; ошибка не прерывает основную операцию
func (s *Service) writeAudit(ctx context.Context, apt *domain.Appointment, action string, newStatus domain.AppointmentStatus, actor, description string) {
	old := string(apt.Status)
	updated := string(newStatus)
	record := &domain.AuditRecord{
		HospitalID:  apt.HospitalID,
		EntityType:  domain.AuditEntityAppointment,
		EntityID:    apt.ID,
		Action:      action,
		Description: description,
		Actor:       actor,
		OldStatus:   &old,
		NewStatus:   &updated,
	}
	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.Error("writeAudit: failed to write audit record for appointment id=%d: %v", apt.ID, err)
	}
}
