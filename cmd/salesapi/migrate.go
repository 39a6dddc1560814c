package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/config"
	"github.com/tbourn/go-sales-api/internal/repo"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the database schema and exit",
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			_, closeDB, err := openDB(cfg.Database, false)
			if err != nil {
				return err
			}
			defer closeDB()
			log.Info().Str("driver", cfg.Database.Driver).Msg("schema up to date")
			return nil
		},
	}
}

// openDB opens the configured database and brings the schema up to date.
// The returned func releases the connection pool.
func openDB(cfg config.DatabaseConfig, withTracing bool) (*gorm.DB, func(), error) {
	db, err := repo.Open(cfg, withTracing)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Warn().Err(err).Msg("database handle")
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("database close")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, closeDB, nil
}
