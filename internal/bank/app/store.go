package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/teller/internal/bank/store"
	"github.com/aussiebroadwan/teller/internal/bank/store/drivers/postgres"
	"github.com/aussiebroadwan/teller/internal/bank/store/drivers/sqlite"
)

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		st, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	case DriverSQLite, "":
		st, err = sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return st, nil
}
