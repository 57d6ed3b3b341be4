package queueentry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/psqlbuilder"
)

const uniqueViolationCode = "23505"

var entryColumns = []string{
	"id",
	"hospital_id",
	"doctor_id",
	"appointment_id",
	"patient_id",
	"patient_name",
	"queue_date",
	"token_number",
	"token_display",
	"position",
	"status",
	"priority",
	"check_in_time",
	"called_time",
	"consultation_start_time",
	"consultation_end_time",
	"estimated_wait_minutes",
	"actual_wait_minutes",
	"skip_count",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с живой очередью приёма
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория очереди
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет пациента в очередь врача.
// Повторный чек-ин той же записи на приём отбивается уникальным индексом
// по appointment_id.
func (r *Repository) Create(ctx context.Context, entry *domain.QueueEntry) (*domain.QueueEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("queue_entries").
		Columns(
			"hospital_id",
			"doctor_id",
			"appointment_id",
			"patient_id",
			"patient_name",
			"queue_date",
			"token_number",
			"token_display",
			"position",
			"status",
			"priority",
			"check_in_time",
			"estimated_wait_minutes",
		).
		Values(
			entry.HospitalID,
			entry.DoctorID,
			entry.AppointmentID,
			entry.PatientID,
			entry.PatientName,
			entry.QueueDate,
			entry.TokenNumber,
			entry.TokenDisplay,
			entry.Position,
			entry.Status,
			entry.Priority,
			entry.CheckInTime,
			entry.EstimatedWaitMinutes,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&entry.Version,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolationCode {
			return nil, fmt.Errorf("%w: Create - %v", ErrDuplicateEntry, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// GetByID получает запись очереди по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("queue_entries").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByAppointmentID получает запись очереди по ID записи на приём
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.QueueEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("queue_entries").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByAppointmentID")
}

// GetBoard получает табло очереди врача на дату: все записи, ещё не покинувшие
// очередь, в порядке позиций
func (r *Repository) GetBoard(ctx context.Context, doctorID int64, date string) ([]*domain.QueueEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	liveStatuses := []string{
		string(domain.QueueStatusWaiting),
		string(domain.QueueStatusCalled),
		string(domain.QueueStatusInConsultation),
	}

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("queue_entries").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.Eq{"queue_date": date}).
		Where(squirrel.Eq{"status": liveStatuses}).
		OrderBy("position ASC, check_in_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBoard - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBoard - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// GetNextWaiting получает первую ожидающую запись очереди врача на дату.
// Внутри транзакции вызова врача строка блокируется через FOR UPDATE,
// чтобы два ресепшена не вызвали одного пациента дважды.
func (r *Repository) GetNextWaiting(ctx context.Context, doctorID int64, date string) (*domain.QueueEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("queue_entries").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.Eq{"queue_date": date}).
		Where(squirrel.Eq{"status": string(domain.QueueStatusWaiting)}).
		OrderBy("priority DESC, check_in_time ASC, id ASC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetNextWaiting - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetNextWaiting")
	if err == ErrEntryNotFound {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Update сохраняет изменённую запись очереди с CAS проверкой версии.
// Обновляются все изменяемые поля; позиции пересчитываются отдельно
// через RecomputePositions.
func (r *Repository) Update(ctx context.Context, entry *domain.QueueEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("queue_entries").
		Set("status", entry.Status).
		Set("priority", entry.Priority).
		Set("check_in_time", entry.CheckInTime).
		Set("called_time", entry.CalledTime).
		Set("consultation_start_time", entry.ConsultationStartTime).
		Set("consultation_end_time", entry.ConsultationEndTime).
		Set("estimated_wait_minutes", entry.EstimatedWaitMinutes).
		Set("actual_wait_minutes", entry.ActualWaitMinutes).
		Set("skip_count", entry.SkipCount).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entry.ID, "version": entry.Version}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		entry.Version++
		return nil
	}

	existsQuery, existsArgs, err := psqlbuilder.Select("1").
		From("queue_entries").
		Where(squirrel.Eq{"id": entry.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build exists query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - check existence: %v", ErrExecQuery, err)
	}

	return ErrStaleWrite
}

// RecomputePositions пересчитывает плотные позиции 1..N всех ожидающих
// записей очереди врача на дату одним UPDATE с оконной функцией.
// Порядок: приоритет по убыванию, затем время чек-ина, затем id.
func (r *Repository) RecomputePositions(ctx context.Context, doctorID int64, date string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `
		UPDATE queue_entries q
		SET position = ranked.new_position,
		    updated_at = NOW()
		FROM (
			SELECT id,
			       ROW_NUMBER() OVER (ORDER BY priority DESC, check_in_time ASC, id ASC) AS new_position
			FROM queue_entries
			WHERE doctor_id = $1
			  AND queue_date = $2
			  AND status = $3
		) ranked
		WHERE q.id = ranked.id
		  AND q.position <> ranked.new_position`

	_, err := executor.ExecContext(ctx, query, doctorID, date, string(domain.QueueStatusWaiting))
	if err != nil {
		return fmt.Errorf("%w: RecomputePositions - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) scanOne(row *sql.Row, method string) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.HospitalID,
		&entry.DoctorID,
		&entry.AppointmentID,
		&entry.PatientID,
		&entry.PatientName,
		&entry.QueueDate,
		&entry.TokenNumber,
		&entry.TokenDisplay,
		&entry.Position,
		&entry.Status,
		&entry.Priority,
		&entry.CheckInTime,
		&entry.CalledTime,
		&entry.ConsultationStartTime,
		&entry.ConsultationEndTime,
		&entry.EstimatedWaitMinutes,
		&entry.ActualWaitMinutes,
		&entry.SkipCount,
		&entry.Version,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan entry: %v", ErrScanRow, method, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}

// scanEntries сканирует результаты запроса в слайс записей очереди
func (r *Repository) scanEntries(rows *sql.Rows) ([]*domain.QueueEntry, error) {
	entries := make([]*domain.QueueEntry, 0)

	for rows.Next() {
		var entry domain.QueueEntry
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.HospitalID,
			&entry.DoctorID,
			&entry.AppointmentID,
			&entry.PatientID,
			&entry.PatientName,
			&entry.QueueDate,
			&entry.TokenNumber,
			&entry.TokenDisplay,
			&entry.Position,
			&entry.Status,
			&entry.Priority,
			&entry.CheckInTime,
			&entry.CalledTime,
			&entry.ConsultationStartTime,
			&entry.ConsultationEndTime,
			&entry.EstimatedWaitMinutes,
			&entry.ActualWaitMinutes,
			&entry.SkipCount,
			&entry.Version,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanEntries - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entry.UpdatedAt = updatedAt.Time

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEntries - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
