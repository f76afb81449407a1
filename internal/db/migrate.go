package db

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is idempotent
// (CREATE ... IF NOT EXISTS / CREATE OR REPLACE), so re-running is safe.
func Migrate(ctx context.Context, dsn string) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("migration completed")
}
