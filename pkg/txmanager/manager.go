package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
)

var (
	// ErrSerializationFailure возвращается, когда сериализуемая транзакция
	// не смогла зафиксироваться из-за конфликта даже после повторной попытки
	ErrSerializationFailure = errors.New("txmanager: serialization failure")

	// ErrLockTimeout возвращается, когда транзакция не дождалась блокировки строк
	ErrLockTimeout = errors.New("txmanager: lock timeout")
)

// Коды ошибок PostgreSQL
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// maxAttempts количество попыток выполнения сериализуемой транзакции
// Конфликты сериализации и таймауты блокировок ретраятся один раз
const maxAttempts = 2

// defaultLockTimeout таймаут ожидания блокировки строк внутри транзакции
const defaultLockTimeout = "3s"

// TxBeginner интерфейс для начала транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager менеджер транзакций поверх обёртки dbmetrics.DB
// Транзакция передается в репозитории через контекст (dbmetrics.WithTransaction)
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn внутри транзакции с уровнем изоляции по умолчанию (READ COMMITTED)
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn, 1)
}

// DoSerializable выполняет fn внутри сериализуемой транзакции
// При конфликте сериализации или таймауте блокировки повторяет попытку один раз
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn, maxAttempts)
}

// DoReadOnly выполняет fn внутри read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn, 1)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error, attempts int) error {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = m.runOnce(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	// Ретраи исчерпаны - конвертируем в сентинельную ошибку
	if isLockTimeout(lastErr) {
		return fmt.Errorf("%w: %v", ErrLockTimeout, lastErr)
	}
	return fmt.Errorf("%w: %v", ErrSerializationFailure, lastErr)
}

func (m *TransactionManager) runOnce(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("txmanager: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	// Ограничиваем время ожидания блокировок, чтобы конкурирующие бронирования
	// не зависали друг за другом
	if _, err := tx.ExecContext(ctx, "SET LOCAL lock_timeout = '"+defaultLockTimeout+"'"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("txmanager: set lock_timeout: %w", err)
	}

	txCtx := dbmetrics.WithTransaction(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txmanager: commit: %w", err)
	}

	return nil
}

// isRetryable возвращает true для ошибок, при которых транзакцию имеет смысл повторить
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	code := string(pqErr.Code)
	return code == pgSerializationFailure || code == pgDeadlockDetected || code == pgLockNotAvailable
}

// isLockTimeout возвращает true, если ошибка вызвана таймаутом ожидания блокировки
func isLockTimeout(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pgLockNotAvailable
}
