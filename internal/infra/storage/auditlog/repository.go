package auditlog

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

// Repository append-only журнал аудита: бронирования, отмены, переходы статусов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала аудита
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет запись в журнал аудита
func (r *Repository) Create(ctx context.Context, record *domain.AuditRecord) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("audit_log").
		Columns(
			"hospital_id",
			"entity_type",
			"entity_id",
			"action",
			"description",
			"actor",
			"old_status",
			"new_status",
		).
		Values(
			record.HospitalID,
			record.EntityType,
			record.EntityID,
			record.Action,
			record.Description,
			record.Actor,
			record.OldStatus,
			record.NewStatus,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&record.ID, &createdAt); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	record.CreatedAt = createdAt.Time

	return nil
}

// GetByEntity получает историю по конкретной сущности, от новых к старым
func (r *Repository) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*domain.AuditRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"hospital_id",
		"entity_type",
		"entity_id",
		"action",
		"description",
		"actor",
		"old_status",
		"new_status",
		"created_at",
	).
		From("audit_log").
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEntity - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEntity - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.AuditRecord, 0)
	for rows.Next() {
		var record domain.AuditRecord
		var createdAt sql.NullTime

		err := rows.Scan(
			&record.ID,
			&record.HospitalID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&record.Description,
			&record.Actor,
			&record.OldStatus,
			&record.NewStatus,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByEntity - scan row: %v", ErrScanRow, err)
		}

		record.CreatedAt = createdAt.Time
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByEntity - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
