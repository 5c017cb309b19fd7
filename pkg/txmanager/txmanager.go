package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
)

const defaultMaxRetries = 3

// PostgreSQL коды ошибок, после которых транзакцию можно безопасно повторить
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx возвращается при ошибке начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается при ошибке фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrRetriesExhausted возвращается, когда все попытки сериализуемой транзакции завершились конфликтом
	ErrRetriesExhausted = errors.New("txmanager: serialization retries exhausted")
)

// TxBeginner интерфейс для начала транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryRecorder получает уведомления о повторах транзакций (метрики)
type RetryRecorder interface {
	RecordTxRetry(reason string)
}

// Scope явный объект транзакции. Передается в репозитории и валидатор:
// запросы внутри scope выполняются в транзакции и берут блокировки строк.
// nil scope означает работу вне транзакции без блокировок.
type Scope struct {
	exec dbmetrics.DBExecutor
}

// NewScope создает scope поверх исполнителя транзакции
func NewScope(exec dbmetrics.DBExecutor) *Scope {
	return &Scope{exec: exec}
}

// Executor возвращает исполнитель запросов транзакции
func (s *Scope) Executor() dbmetrics.DBExecutor {
	return s.exec
}

// Locking возвращает true, если запросы должны брать блокировки (FOR UPDATE)
func (s *Scope) Locking() bool {
	return s != nil
}

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db         TxBeginner
	maxRetries int
	recorder   RetryRecorder
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, recorder RetryRecorder) *TransactionManager {
	return &TransactionManager{
		db:         db,
		maxRetries: defaultMaxRetries,
		recorder:   recorder,
	}
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context, scope *Scope) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context, scope *Scope) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// При конфликте сериализации (40001) или дедлоке (40P01) транзакция повторяется целиком,
// поэтому fn обязана быть идемпотентной относительно внешнего состояния.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context, scope *Scope) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil {
			return nil
		}

		reason, retryable := retryReason(err)
		if !retryable {
			return err
		}
		if attempt == m.maxRetries {
			break
		}
		if m.recorder != nil {
			m.recorder.RecordTxRetry(reason)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, scope *Scope) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, NewScope(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable возвращает true для ошибок сериализации и дедлоков PostgreSQL
func IsRetryable(err error) bool {
	_, ok := retryReason(err)
	return ok
}

func retryReason(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	switch string(pqErr.Code) {
	case pqSerializationFailure:
		return "serialization_failure", true
	case pqDeadlockDetected:
		return "deadlock_detected", true
	default:
		return "", false
	}
}
