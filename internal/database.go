package internal

import (
	"AuthTokens_Service/internal/migrations"
	"context"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"log/slog"
)

type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(ctx context.Context, dbDriver string, dbConnectionStr string) (*Database, error) {
	const op = "internal.NewDatabaseConnection"

	database, err := sqlx.ConnectContext(ctx, dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	slog.Info("database_connected", "driver", dbDriver)
	return &Database{
		database,
	}, nil
}

// Migrate applies the embedded goose migrations.
func (db *Database) Migrate(ctx context.Context) error {
	const op = "internal.Database.Migrate"

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db.DB.DB, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("internal.Database.Close: %w", err)
	}

	return nil
}
