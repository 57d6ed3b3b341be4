package appointment

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

var appointmentColumns = []string{
	"id",
	"appointment_number",
	"hospital_id",
	"doctor_id",
	"doctor_name",
	"patient_id",
	"patient_name",
	"patient_mobile",
	"appointment_date",
	"slot_start",
	"slot_end",
	"status",
	"token_number",
	"teleconsultation",
	"consultation_fee",
	"booking_source",
	"chief_complaint",
	"booking_notes",
	"reschedule_count",
	"previous_appointment_id",
	"cancelled_at",
	"cancelled_by",
	"cancellation_reason",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей на приём
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись на приём
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Создание записи всегда должно идти внутри транзакции бронирования,
// вместе с выдачей номера талона и проверкой занятости слота.
func (r *Repository) Create(ctx context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"appointment_number",
			"hospital_id",
			"doctor_id",
			"doctor_name",
			"patient_id",
			"patient_name",
			"patient_mobile",
			"appointment_date",
			"slot_start",
			"slot_end",
			"status",
			"token_number",
			"teleconsultation",
			"consultation_fee",
			"booking_source",
			"chief_complaint",
			"booking_notes",
			"reschedule_count",
			"previous_appointment_id",
		).
		Values(
			apt.AppointmentNumber,
			apt.HospitalID,
			apt.DoctorID,
			apt.DoctorName,
			apt.PatientID,
			apt.PatientName,
			apt.PatientMobile,
			apt.Date,
			apt.SlotStart,
			apt.SlotEnd,
			apt.Status,
			apt.TokenNumber,
			apt.Teleconsultation,
			apt.ConsultationFee,
			apt.BookingSource,
			apt.ChiefComplaint,
			apt.BookingNotes,
			apt.RescheduleCount,
			apt.PreviousAppointmentID,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&apt.ID,
		&apt.Version,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolationCode {
			return nil, fmt.Errorf("%w: Create - %v", ErrDuplicateNumber, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	apt.CreatedAt = createdAt.Time
	apt.UpdatedAt = updatedAt.Time

	return apt, nil
}

// GetByID получает запись на приём по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByNumber получает запись на приём по человекочитаемому номеру
func (r *Repository) GetByNumber(ctx context.Context, number string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"appointment_number": number}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByNumber - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByNumber")
}

// GetByGuestMobile получает гостевую запись по номеру телефона и номеру записи.
// Оба параметра обязательны: одного номера телефона недостаточно для доступа к данным.
func (r *Repository) GetByGuestMobile(ctx context.Context, mobile, number string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{
			"patient_mobile":     mobile,
			"appointment_number": number,
			"patient_id":         0,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByGuestMobile - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByGuestMobile")
}

// GetByDoctorAndDate получает записи врача на дату.
// Если вызов идёт внутри транзакции бронирования, строки блокируются через
// FOR UPDATE: параллельные бронирования того же врача на ту же дату
// сериализуются на этой блокировке.
func (r *Repository) GetByDoctorAndDate(ctx context.Context, doctorID int64, date string, activeOnly bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.Eq{"appointment_date": date}).
		OrderBy("slot_start ASC, token_number ASC")

	if activeOnly {
		activeStatusStrings := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// GetByFilter получает записи по гибкому фильтру (история пациента, списки по больнице)
func (r *Repository) GetByFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		OrderBy("appointment_date DESC, slot_start DESC")

	if filter.HospitalID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"hospital_id": *filter.HospitalID})
	}
	if filter.DoctorID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"doctor_id": *filter.DoctorID})
	}
	if filter.PatientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"appointment_date": filter.Date.Format(domain.DateFormat)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if filter.ActiveOnly {
		activeStatusStrings := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// CountByStatus считает записи врача на дату в разрезе статусов
func (r *Repository) CountByStatus(ctx context.Context, doctorID int64, date string) (map[domain.AppointmentStatus]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.Eq{"appointment_date": date}).
		GroupBy("status").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[domain.AppointmentStatus]int)
	for rows.Next() {
		var status domain.AppointmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: CountByStatus - scan row: %v", ErrScanRow, err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

// UpdateStatus переводит запись в новый статус с CAS проверкой версии.
// Возвращает ErrStaleWrite, если версия изменилась с момента чтения.
func (r *Repository) UpdateStatus(ctx context.Context, id, version int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": version}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, query, args, id, "UpdateStatus")
}

// Cancel отменяет запись с указанием инициатора и причины, с CAS проверкой версии
func (r *Repository) Cancel(ctx context.Context, id, version int64, status domain.AppointmentStatus, cancelledBy, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("cancelled_by", cancelledBy).
		Set("cancellation_reason", reason).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": version}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, query, args, id, "Cancel")
}

// NextTokenNumber атомарно выдаёт следующий номер талона для пары (врач, дата).
// Счётчик живёт в отдельной таблице и инкрементируется внутри транзакции
// бронирования, поэтому номера монотонны и без дыр при любой конкуренции.
func (r *Repository) NextTokenNumber(ctx context.Context, doctorID int64, date string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `
		INSERT INTO doctor_token_counters (doctor_id, token_date, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (doctor_id, token_date)
		DO UPDATE SET last_value = doctor_token_counters.last_value + 1
		RETURNING last_value`

	var token int
	if err := executor.QueryRowContext(ctx, query, doctorID, date).Scan(&token); err != nil {
		return 0, fmt.Errorf("%w: NextTokenNumber - execute upsert: %v", ErrExecQuery, err)
	}

	return token, nil
}

// NextAppointmentSequence атомарно выдаёт следующий порядковый номер записи за год
// (для человекочитаемого номера вида APT2026000042)
func (r *Repository) NextAppointmentSequence(ctx context.Context, year int) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `
		INSERT INTO appointment_number_counters (counter_year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (counter_year)
		DO UPDATE SET last_value = appointment_number_counters.last_value + 1
		RETURNING last_value`

	var seq int64
	if err := executor.QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: NextAppointmentSequence - execute upsert: %v", ErrExecQuery, err)
	}

	return seq, nil
}

// execCAS выполняет CAS update и различает "запись не найдена" от "версия устарела"
func (r *Repository) execCAS(ctx context.Context, executor DBExecutor, query string, args []interface{}, id int64, method string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// 0 строк: либо записи нет, либо версия устарела
	existsQuery, existsArgs, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, method, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s - check existence: %v", ErrExecQuery, method, err)
	}

	return ErrStaleWrite
}

func (r *Repository) scanOne(row *sql.Row, method string) (*domain.Appointment, error) {
	var apt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&apt.ID,
		&apt.AppointmentNumber,
		&apt.HospitalID,
		&apt.DoctorID,
		&apt.DoctorName,
		&apt.PatientID,
		&apt.PatientName,
		&apt.PatientMobile,
		&apt.Date,
		&apt.SlotStart,
		&apt.SlotEnd,
		&apt.Status,
		&apt.TokenNumber,
		&apt.Teleconsultation,
		&apt.ConsultationFee,
		&apt.BookingSource,
		&apt.ChiefComplaint,
		&apt.BookingNotes,
		&apt.RescheduleCount,
		&apt.PreviousAppointmentID,
		&apt.CancelledAt,
		&apt.CancelledBy,
		&apt.CancellationReason,
		&apt.Version,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, method, err)
	}

	apt.CreatedAt = createdAt.Time
	apt.UpdatedAt = updatedAt.Time

	return &apt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей на приём
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var apt domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&apt.ID,
			&apt.AppointmentNumber,
			&apt.HospitalID,
			&apt.DoctorID,
			&apt.DoctorName,
			&apt.PatientID,
			&apt.PatientName,
			&apt.PatientMobile,
			&apt.Date,
			&apt.SlotStart,
			&apt.SlotEnd,
			&apt.Status,
			&apt.TokenNumber,
			&apt.Teleconsultation,
			&apt.ConsultationFee,
			&apt.BookingSource,
			&apt.ChiefComplaint,
			&apt.BookingNotes,
			&apt.RescheduleCount,
			&apt.PreviousAppointmentID,
			&apt.CancelledAt,
			&apt.CancelledBy,
			&apt.CancellationReason,
			&apt.Version,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}

		apt.CreatedAt = createdAt.Time
		apt.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &apt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
