package schedulerule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/psqlbuilder"
)

var ruleColumns = []string{
	"id",
	"hospital_id",
	"doctor_id",
	"day_of_week",
	"specific_date",
	"recurring",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"slot_duration_minutes",
	"max_appointments",
	"effective_from",
	"effective_until",
	"teleconsultation",
	"room_number",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с правилами расписания врачей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое правило расписания
func (r *Repository) Create(ctx context.Context, rule *domain.ScheduleRule) (*domain.ScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_rules").
		Columns(
			"hospital_id",
			"doctor_id",
			"day_of_week",
			"specific_date",
			"recurring",
			"start_time",
			"end_time",
			"break_start",
			"break_end",
			"slot_duration_minutes",
			"max_appointments",
			"effective_from",
			"effective_until",
			"teleconsultation",
			"room_number",
			"active",
		).
		Values(
			rule.HospitalID,
			rule.DoctorID,
			int(rule.DayOfWeek),
			rule.SpecificDate,
			rule.Recurring,
			rule.StartTime,
			rule.EndTime,
			rule.BreakStart,
			rule.BreakEnd,
			rule.SlotDurationMinutes,
			rule.MaxAppointments,
			rule.EffectiveFrom,
			rule.EffectiveUntil,
			rule.Teleconsultation,
			rule.RoomNumber,
			rule.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// GetByID получает правило расписания по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("schedule_rules").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var rule domain.ScheduleRule
	var dayOfWeek int
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&rule.HospitalID,
		&rule.DoctorID,
		&dayOfWeek,
		&rule.SpecificDate,
		&rule.Recurring,
		&rule.StartTime,
		&rule.EndTime,
		&rule.BreakStart,
		&rule.BreakEnd,
		&rule.SlotDurationMinutes,
		&rule.MaxAppointments,
		&rule.EffectiveFrom,
		&rule.EffectiveUntil,
		&rule.Teleconsultation,
		&rule.RoomNumber,
		&rule.Active,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %v", ErrScanRow, err)
	}

	rule.DayOfWeek = weekdayFromInt(dayOfWeek)
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}

// GetByDoctorID получает правила расписания врача
// Опционально только активные
func (r *Repository) GetByDoctorID(ctx context.Context, doctorID int64, activeOnly bool) ([]*domain.ScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(ruleColumns...).
		From("schedule_rules").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("day_of_week ASC, start_time ASC")

	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRules(rows)
}

// Deactivate помечает правило неактивным.
// Правила не удаляются физически: исторические записи должны резолвиться
// против правила, по которому были созданы.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedule_rules").
		Set("active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// scanRules сканирует результаты запроса в слайс правил расписания
func (r *Repository) scanRules(rows *sql.Rows) ([]*domain.ScheduleRule, error) {
	rules := make([]*domain.ScheduleRule, 0)

	for rows.Next() {
		var rule domain.ScheduleRule
		var dayOfWeek int
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&rule.ID,
			&rule.HospitalID,
			&rule.DoctorID,
			&dayOfWeek,
			&rule.SpecificDate,
			&rule.Recurring,
			&rule.StartTime,
			&rule.EndTime,
			&rule.BreakStart,
			&rule.BreakEnd,
			&rule.SlotDurationMinutes,
			&rule.MaxAppointments,
			&rule.EffectiveFrom,
			&rule.EffectiveUntil,
			&rule.Teleconsultation,
			&rule.RoomNumber,
			&rule.Active,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanRules - scan row: %v", ErrScanRow, err)
		}

		rule.DayOfWeek = weekdayFromInt(dayOfWeek)
		rule.CreatedAt = createdAt.Time
		rule.UpdatedAt = updatedAt.Time

		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

func weekdayFromInt(d int) time.Weekday {
	return time.Weekday(d % 7)
}
