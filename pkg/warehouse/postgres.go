// pkg/warehouse/postgres.go
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/config"
	"github.com/charted-solutions/loanrisk/pkg/model"
)

// PostgresSource implements the TableSource interface for PostgreSQL
type PostgresSource struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresSource creates and initializes a new PostgreSQL table source
func NewPostgresSource(ctx context.Context, cfg *config.PostgresConfig) (*PostgresSource, error) {
	logger := zap.L().Named("postgres-source")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	applyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := pingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &PostgresSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// FetchTable reads up to limit rows from a table
func (s *PostgresSource) FetchTable(ctx context.Context, table string, limit int) (*model.RawTable, error) {
	return fetchRaw(ctx, s.db, s.logger, table, limit, s.cfg.QueryTimeout)
}

// Validate verifies the PostgreSQL connection and read access
func (s *PostgresSource) Validate() error {
	var version string
	if err := s.db.QueryRow("SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	s.logger.Info("Connected to PostgreSQL",
		zap.String("version", version),
		zap.String("database", s.cfg.Database))
	return nil
}

// Close closes the database connection
func (s *PostgresSource) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	return s.db.Close()
}
