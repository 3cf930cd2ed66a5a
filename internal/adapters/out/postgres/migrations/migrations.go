// Package migrations embeds the versioned schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// Up applies every pending migration. It is run once at start-up, before the
// HTTP server accepts requests.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return err
	}
	return nil
}
