package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// Sources lets goose find the compiled-in migrations regardless of the working directory.
//
//go:embed *.go
var Sources embed.FS

const Dir = "."

func Setup() error {
	goose.SetBaseFS(Sources)
	return goose.SetDialect("postgres")
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB) error {
	if err := Setup(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, Dir)
}
