package db

import (
	"database/sql"
	"fmt"

	"github.com/atreidesdev/listopiaBackend/db/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies the embedded SQL migrations. goose wants a database/sql
// handle, so a short-lived pgx stdlib connection is used alongside the pool.
func Migrate(dbURL string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	conn, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer conn.Close()

	return goose.Up(conn, ".")
}
