// pkg/warehouse/snowflake.go
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/config"
	"github.com/charted-solutions/loanrisk/pkg/model"
)

// SnowflakeSource implements the TableSource interface for Snowflake
type SnowflakeSource struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeSource creates a new Snowflake table source
func NewSnowflakeSource(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeSource, error) {
	logger := zap.L().Named("snowflake-source")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	applyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := pingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	return &SnowflakeSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// FetchTable reads up to limit rows from a table
func (s *SnowflakeSource) FetchTable(ctx context.Context, table string, limit int) (*model.RawTable, error) {
	return fetchRaw(ctx, s.db, s.logger, table, limit, s.cfg.QueryTimeout)
}

// Validate verifies the Snowflake connection and access rights
func (s *SnowflakeSource) Validate() error {
	var role, database, warehouse string
	err := s.db.QueryRow("SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	s.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))

	if database != s.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, s.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (s *SnowflakeSource) Close() error {
	s.logger.Info("Closing Snowflake connection")
	return s.db.Close()
}
