// pkg/warehouse/source.go
package warehouse

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// TableSource pulls a tabular extract straight out of a warehouse instead
// of a file upload. Rows land in the same canonicalization path either way.
type TableSource interface {
	// FetchTable reads up to limit rows from a table into a RawTable.
	FetchTable(ctx context.Context, table string, limit int) (*model.RawTable, error)

	// Validate verifies the connection and permissions
	Validate() error

	// Close closes the connection and releases resources
	Close() error
}

// identifierPattern restricts table names to plain (optionally qualified)
// identifiers, since a table name cannot be bound as a query parameter.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validateIdentifier(table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("invalid table identifier: %q", table)
	}
	return nil
}

// pingWithTimeout attempts to ping a database with a timeout
func pingWithTimeout(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// applyConnectionSettings configures database connection pool settings
func applyConnectionSettings(db *sqlx.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// fetchRaw runs a SELECT against a table and flattens the result set into a
// RawTable, stringifying every value so it passes through the same coercion
// policy as an uploaded file.
func fetchRaw(ctx context.Context, db *sqlx.DB, logger *zap.Logger, table string, limit int, queryTimeout time.Duration) (*model.RawTable, error) {
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10000
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit)
	rows, err := db.QueryxContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", table, err)
	}

	raw := &model.RawTable{Headers: columns}
	for rows.Next() {
		values := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(values); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}

		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = valueToString(values[col])
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed for %s: %w", table, err)
	}

	logger.Info("Fetched warehouse table",
		zap.String("table", table),
		zap.Int("columns", len(raw.Headers)),
		zap.Int("rows", len(raw.Rows)))
	return raw, nil
}

// valueToString renders a scanned value the way it would appear in a
// delimited export.
func valueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
