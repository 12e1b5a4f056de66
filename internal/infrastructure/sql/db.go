package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"replay_report/internal/config"
	"replay_report/internal/database"
	"replay_report/internal/domain/query"
	"replay_report/internal/domain/report"
	"replay_report/internal/format"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OpenFunc opens one connection to the replay database.
type OpenFunc func(cfg config.DB, debug bool) (*gorm.DB, error)

// Executor runs catalog templates against the replay database. Every call
// opens its own connection and closes it before returning.
type Executor struct {
	cfg    config.DB
	debug  bool
	open   OpenFunc
	logger *logrus.Logger
}

// NewExecutor creates an executor for the configured database.
func NewExecutor(cfg config.Config, logger *logrus.Logger) *Executor {
	return &Executor{
		cfg:    cfg.DB,
		debug:  strings.EqualFold(cfg.Logging.Level, "debug"),
		open:   database.Open,
		logger: logger,
	}
}

// Execute binds param as the file_name prefix, runs the template and
// returns the materialised result with its row count.
func (e *Executor) Execute(ctx context.Context, t query.Template, param string) (report.ResultTable, int, error) {
	logger := e.logger.WithFields(logrus.Fields{
		"bucket": t.Title,
		"index":  t.Index,
	})

	if err := t.Check(); err != nil {
		return report.ResultTable{}, 0, err
	}

	start := time.Now()
	db, err := e.open(e.cfg, e.debug)
	if err != nil {
		return report.ResultTable{}, 0, fmt.Errorf("bucket %q: %w", t.Title, err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.WithError(err).Warn("failed to close database connection")
		}
	}()

	rows, err := db.WithContext(ctx).Raw(t.SQL, query.PrefixPattern(param)).Rows()
	if err != nil {
		return report.ResultTable{}, 0, fmt.Errorf("bucket %q: query failed: %w", t.Title, err)
	}
	defer rows.Close()

	table, err := materialize(rows)
	if err != nil {
		return report.ResultTable{}, 0, fmt.Errorf("bucket %q: %w", t.Title, err)
	}
	liftRatios(&table)

	logger.WithFields(logrus.Fields{
		"rows":     table.Len(),
		"duration": time.Since(start),
	}).Debug("bucket query finished")

	return table, table.Len(), nil
}

// materialize reads column names and every row. Byte slices returned by the
// driver are decoded into strings.
func materialize(rows *sql.Rows) (report.ResultTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return report.ResultTable{}, fmt.Errorf("failed to read columns: %w", err)
	}

	table := report.ResultTable{Columns: cols, Rows: make([][]any, 0)}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range ptrs {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return report.ResultTable{}, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return report.ResultTable{}, fmt.Errorf("failed to read rows: %w", err)
	}
	return table, nil
}

// liftRatios turns numeric reduce_pct cells into format.Ratio so that later
// stages can both print them with a percent suffix and style them.
func liftRatios(table *report.ResultTable) {
	idx := table.ColumnIndex(query.RatioColumn)
	if idx < 0 {
		return
	}
	for _, row := range table.Rows {
		if v, ok := format.Numeric(row[idx]); ok {
			row[idx] = format.Ratio{Value: v}
		}
	}
}
