package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// Tx is the transaction handle stores work against. *sql.Tx and *TimedTx
// both satisfy it.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Commit() error
	Rollback() error
}

var (
	_ Tx = (*sql.Tx)(nil)
	_ Tx = (*TimedTx)(nil)
)

// BeginTx starts a transaction on db. A *TimedDB hands out a *TimedTx so
// statements inside the transaction are timed like any other call.
func BeginTx(ctx context.Context, db SQLDB) (Tx, error) {
	if t, ok := db.(*TimedDB); ok {
		return t.BeginTimedTx(ctx, nil)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// QueryObserver receives one observation per database call.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration, slow bool)
}

// TimedDB wraps a *sql.DB to log slow queries and report timings to an observer.
// Satisfies the SQLDB interface so it can be passed to any store constructor.
type TimedDB struct {
	db        *sql.DB
	log       *zap.Logger
	observer  QueryObserver
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and reports to observer (may be nil)
func NewTimedDB(db *sql.DB, log *zap.Logger, observer QueryObserver, threshold time.Duration) *TimedDB {
	if log == nil {
		log = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{
		db:        db,
		log:       log,
		observer:  observer,
		threshold: threshold,
	}
}

// logQuery logs and reports a query timing.
func (t *TimedDB) logQuery(op, query string, start time.Time) {
	d := time.Since(start)
	slow := d >= t.threshold
	if slow {
		t.log.Warn("slow_query",
			zap.String("op", op),
			zap.String("query", query),
			zap.Float64("duration_ms", float64(d.Microseconds())/1000.0),
		)
	} else if ce := t.log.Check(zap.DebugLevel, "query"); ce != nil {
		ce.Write(
			zap.String("op", op),
			zap.Float64("duration_ms", float64(d.Microseconds())/1000.0),
		)
	}
	if t.observer != nil {
		t.observer.ObserveQuery(op, d, slow)
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing reported
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.logQuery("ExecContext", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing reported
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.logQuery("QueryContext", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.logQuery("QueryRowContext", query, start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("BeginTx", "BEGIN", start)
	return tx, err
}

// BeginTimedTx starts a transaction whose statements, and whose total
// duration from BEGIN to COMMIT or ROLLBACK, are reported like plain calls.
func (t *TimedDB) BeginTimedTx(ctx context.Context, opts *sql.TxOptions) (*TimedTx, error) {
	tx, err := t.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &TimedTx{tx: tx, db: t, start: time.Now()}, nil
}

// TimedTx wraps a *sql.Tx with the timing of the TimedDB that began it.
type TimedTx struct {
	tx    *sql.Tx
	db    *TimedDB
	start time.Time
	done  bool
}

// ExecContext wraps sql.Tx.ExecContext with timing.
func (t *TimedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.tx.ExecContext(ctx, query, args...)
	t.db.logQuery("TxExecContext", query, start)
	return result, err
}

// QueryContext wraps sql.Tx.QueryContext with timing.
func (t *TimedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.db.logQuery("TxQueryContext", query, start)
	return rows, err
}

// QueryRowContext wraps sql.Tx.QueryRowContext with timing.
func (t *TimedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.db.logQuery("TxQueryRowContext", query, start)
	return row
}

// Commit commits the transaction and reports its total duration.
func (t *TimedTx) Commit() error {
	err := t.tx.Commit()
	t.finish("Commit", "COMMIT")
	return err
}

// Rollback aborts the transaction. A rollback after a commit is a no-op
// for timing and returns sql.ErrTxDone as usual.
func (t *TimedTx) Rollback() error {
	err := t.tx.Rollback()
	t.finish("Rollback", "ROLLBACK")
	return err
}

func (t *TimedTx) finish(op, query string) {
	if t.done {
		return
	}
	t.done = true
	t.db.logQuery(op, query, t.start)
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}
