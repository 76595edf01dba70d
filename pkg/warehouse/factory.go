// pkg/warehouse/factory.go
package warehouse

import (
	"context"
	"fmt"

	"github.com/charted-solutions/loanrisk/pkg/config"
)

// Open creates a table source of the given kind ("postgres" or
// "snowflake") from the loaded configuration. A kind whose configuration
// was not provided in the environment is an error, not a panic.
func Open(ctx context.Context, kind string, cfg *config.Config) (TableSource, error) {
	switch kind {
	case "postgres":
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("postgres source is not configured")
		}
		source, err := NewPostgresSource(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL source: %w", err)
		}
		return source, nil
	case "snowflake":
		if cfg.Snowflake == nil {
			return nil, fmt.Errorf("snowflake source is not configured")
		}
		source, err := NewSnowflakeSource(ctx, cfg.Snowflake)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown warehouse source: %q", kind)
	}
}
