package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/service/queue/models"
)

// Service сервис чтения табло живой очереди
type Service struct {
	queueRepo QueueRepository
	stats     StatsRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса очереди
func NewService(
	queueRepo QueueRepository,
	stats StatsRepository,
	logger Logger,
) *Service {
	return &Service{
		queueRepo: queueRepo,
		stats:     stats,
		logger:    logger,
	}
}

// GetBoard получает табло очереди врача на дату: ожидающих в порядке позиций,
// вызванного и находящегося в кабинете пациентов, среднюю длительность консультации
func (s *Service) GetBoard(ctx context.Context, doctorID int64, date time.Time) (*models.BoardResponse, error) {
	s.logger.Info("GetBoard: fetching queue board for doctor=%d, date=%s", doctorID, date.Format(domain.DateFormat))

	if doctorID <= 0 {
		return nil, fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	dateStr := date.Format(domain.DateFormat)

	entries, err := s.queueRepo.GetBoard(ctx, doctorID, dateStr)
	if err != nil {
		s.logger.Error("GetBoard: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetBoard - repository error: %v", ErrInternal, err)
	}

	avg, err := s.stats.AvgConsultationMinutes(ctx, doctorID)
	if err != nil {
		s.logger.Error("GetBoard: failed to get consultation average for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetBoard - failed to get consultation average: %v", ErrInternal, err)
	}

	resp := &models.BoardResponse{
		DoctorID:               doctorID,
		Date:                   dateStr,
		AvgConsultationMinutes: avg,
		Entries:                make([]models.BoardEntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		switch entry.Status {
		case domain.QueueStatusWaiting:
			resp.WaitingCount++
		case domain.QueueStatusInConsultation:
			token := entry.TokenDisplay
			resp.NowServing = &token
		case domain.QueueStatusCalled:
			token := entry.TokenDisplay
			resp.LastCalled = &token
		}

		if entryResp := models.FromDomainEntry(entry); entryResp != nil {
			resp.Entries = append(resp.Entries, *entryResp)
		}
	}

	s.logger.Info("GetBoard: board for doctor=%d has %d entries, %d waiting", doctorID, len(resp.Entries), resp.WaitingCount)
	return resp, nil
}
