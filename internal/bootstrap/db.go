package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/projectkeeper/project-keeper/internal/projects/repository"
)

const migrateTimeout = 30 * time.Second

// Migrate applies the projects schema to the Postgres database at dsn.
// The schema is idempotent so it is safe to run on every deploy.
func Migrate(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DB_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, repository.PostgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
