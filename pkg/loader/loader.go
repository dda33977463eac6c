// pkg/loader/loader.go
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/retaildw/pipeline/pkg/model"
)

// DefaultBatchSize bounds memory during loads. Matches the batch discipline
// of the warehouse: 5,000 rows per INSERT.
const DefaultBatchSize = 5000

// Loader persists staging, dimension, and fact datasets with
// truncate-then-append semantics. Truncation preserves table identity,
// constraints, and foreign keys; tables are never dropped. A failure during
// any batch aborts the load for that table and propagates as a
// model.LoadError; a retry must re-run the whole load from a clean truncate.
type Loader struct {
	db        *sqlx.DB
	logger    *zap.Logger
	batchSize int
}

// NewLoader creates a new Loader instance
func NewLoader(db *sqlx.DB, logger *zap.Logger, batchSize int) (*Loader, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Loader{
		db:        db,
		logger:    logger.Named("loader"),
		batchSize: batchSize,
	}, nil
}

// truncate clears a table in place. RESTART IDENTITY resets the surrogate
// key sequences of dimension tables so reloads produce dense keys.
func (l *Loader) truncate(ctx context.Context, table string, restartIdentity bool) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s", pq.QuoteIdentifier(table))
	if restartIdentity {
		stmt += " RESTART IDENTITY"
	}
	stmt += " CASCADE"

	if _, err := l.db.ExecContext(ctx, stmt); err != nil {
		return &model.LoadError{Table: table, Err: err}
	}

	l.logger.Info("Truncated table", zap.String("table", table))
	return nil
}

// insertSQL builds a multi-row INSERT with $n placeholders for one batch
func insertSQL(table string, columns []string, rowCount int, returning []string) string {
	placeholders := make([]string, rowCount)
	for i := 0; i < rowCount; i++ {
		row := make([]string, len(columns))
		for j := range columns {
			row[j] = fmt.Sprintf("$%d", i*len(columns)+j+1)
		}
		placeholders[i] = "(" + strings.Join(row, ", ") + ")"
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))

	if len(returning) > 0 {
		stmt += " RETURNING " + strings.Join(returning, ", ")
	}

	return stmt
}

// loadBatches writes rows in fixed-size batches. values maps one row to its
// column-ordered arguments; scan, when non-nil, consumes the RETURNING rows
// of each batch in insertion order.
func (l *Loader) loadBatches(
	ctx context.Context,
	table string,
	columns []string,
	returning []string,
	total int,
	values func(i int) []interface{},
	scan func(rows *sqlx.Rows) error,
) error {
	batchNum := 0
	for start := 0; start < total; start += l.batchSize {
		end := start + l.batchSize
		if end > total {
			end = total
		}
		batchNum++

		args := make([]interface{}, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			args = append(args, values(i)...)
		}

		stmt := insertSQL(table, columns, end-start, returning)

		l.logger.Debug("Loading batch",
			zap.String("table", table),
			zap.Int("batch", batchNum),
			zap.Int("from_row", start+1),
			zap.Int("to_row", end))

		if scan == nil {
			if _, err := l.db.ExecContext(ctx, stmt, args...); err != nil {
				return &model.LoadError{Table: table, Batch: batchNum, Err: err}
			}
			continue
		}

		rows, err := l.db.QueryxContext(ctx, stmt, args...)
		if err != nil {
			return &model.LoadError{Table: table, Batch: batchNum, Err: err}
		}
		if err := scan(rows); err != nil {
			rows.Close()
			return &model.LoadError{Table: table, Batch: batchNum, Err: err}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return &model.LoadError{Table: table, Batch: batchNum, Err: err}
		}
		rows.Close()
	}

	l.logger.Info("Load completed",
		zap.String("table", table),
		zap.Int("rows_loaded", total),
		zap.Int("batches", batchNum))

	return nil
}
