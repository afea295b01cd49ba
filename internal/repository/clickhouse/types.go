package clickhouse

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// Batch is the part of a ClickHouse batch insert the repository uses.
	Batch interface {
		Append(v ...any) error
		Send() error
		Abort() error
	}
	// Rows is the part of a ClickHouse result set the repository uses.
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}
	Conn interface {
		PrepareBatch(ctx context.Context, query string) (Batch, error)
		Query(ctx context.Context, query string, args ...any) (Rows, error)
		Ping(ctx context.Context) error
		Close() error
	}
)
