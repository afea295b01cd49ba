package metrics

import "time"

var (
	sqliteRepositoryTotal, sqliteRepositoryDuration         = operationVecs("sqlite_repository", "relational mirror operations", "operation")
	clickhouseRepositoryTotal, clickhouseRepositoryDuration = operationVecs("clickhouse_repository", "ledger journal operations", "operation")
)

// SQLiteRepository tracks metrics for relational mirror operations.
type SQLiteRepository struct{}

// NewSQLiteRepository creates a SQLiteRepository metrics collector.
func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Observe records duration and status of a repository operation.
func (SQLiteRepository) Observe(operation string, err error, started time.Time) {
	s := status(err)
	sqliteRepositoryTotal.WithLabelValues(operation, s).Inc()
	sqliteRepositoryDuration.WithLabelValues(operation, s).Observe(seconds(started))
}

// ClickhouseRepository tracks metrics for ClickHouse journal operations.
type ClickhouseRepository struct{}

// NewClickhouseRepository creates a ClickhouseRepository metrics collector.
func NewClickhouseRepository() *ClickhouseRepository {
	return &ClickhouseRepository{}
}

// Observe records duration and status of a journal operation.
func (ClickhouseRepository) Observe(operation string, err error, started time.Time) {
	s := status(err)
	clickhouseRepositoryTotal.WithLabelValues(operation, s).Inc()
	clickhouseRepositoryDuration.WithLabelValues(operation, s).Observe(seconds(started))
}
