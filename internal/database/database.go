package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(viper.GetInt("DB_MAX_OPEN_CONNS"))
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate runs every embedded migration in file name order. Statements use
// IF NOT EXISTS so running it again is a no-op.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(content), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
		}
		log.Debug().Str("file", name).Msg("migration applied")
	}
	return nil
}
