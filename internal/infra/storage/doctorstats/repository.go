package doctorstats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository хранит скользящую среднюю длительность консультации по врачам.
// Среднее используется для оценки времени ожидания в очереди.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория статистики врачей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// AvgConsultationMinutes возвращает среднюю длительность консультации врача.
// Пока статистики нет, возвращается значение по умолчанию.
func (r *Repository) AvgConsultationMinutes(ctx context.Context, doctorID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("avg_consultation_minutes").
		From("doctor_stats").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: AvgConsultationMinutes - build select query: %v", ErrBuildQuery, err)
	}

	var avg float64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&avg)
	if err == sql.ErrNoRows {
		return domain.DefaultAvgConsultationMinutes, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: AvgConsultationMinutes - scan avg: %v", ErrScanRow, err)
	}

	minutes := int(avg + 0.5)
	if minutes <= 0 {
		minutes = domain.DefaultAvgConsultationMinutes
	}

	return minutes, nil
}

// RecordConsultation учитывает завершённую консультацию в скользящей средней.
// Инкрементальная формула не требует перечитывать историю:
// new_avg = (avg * n + minutes) / (n + 1).
func (r *Repository) RecordConsultation(ctx context.Context, doctorID int64, minutes int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `
		INSERT INTO doctor_stats (doctor_id, avg_consultation_minutes, consultations_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (doctor_id)
		DO UPDATE SET
			avg_consultation_minutes =
				(doctor_stats.avg_consultation_minutes * doctor_stats.consultations_count + $2)
				/ (doctor_stats.consultations_count + 1),
			consultations_count = doctor_stats.consultations_count + 1,
			updated_at = NOW()`

	if _, err := executor.ExecContext(ctx, query, doctorID, minutes); err != nil {
		return fmt.Errorf("%w: RecordConsultation - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}
