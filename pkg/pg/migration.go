package pg

import (
	"github.com/gesthub/gesthub/pkg/logger"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in dir.
func Migrate(cfg Config, dir string) error {
	return migrate(cfg, dir, "up")
}

// Rollback reverts the most recent migration.
func Rollback(cfg Config, dir string) error {
	return migrate(cfg, dir, "down")
}

// MigrationStatus prints the applied state of every migration in dir.
func MigrationStatus(cfg Config, dir string) error {
	return migrate(cfg, dir, "status")
}

func migrate(cfg Config, dir, command string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer db.Close()

	logger.Info("running migrations", "command", command, "dir", dir)
	if err = goose.Run(command, db, dir); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}
	return nil
}
