package commands

import (
	"github.com/rs/zerolog/log"

	cfg "gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/queries"

	"github.com/golang-migrate/migrate/v4"

	// import support for file mime type
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsSource = "file://./db/migrations"

func open(config cfg.Config) *migrate.Migrate {
	m, err := migrate.New(migrationsSource, queries.URI(config.DatabaseCluster.Writer))
	if err != nil {
		log.Fatal().Err(err).Str("section", "migrate").Msg("Unable to connect to database [WRITER]")
	}
	return m
}

// Migrate the current database schema to the new version
func Migrate(config cfg.Config) {
	m := open(config)
	defer m.Close()
	check(m.Up())
}

// MigrateSteps applies n migrations, a negative n rolls them back
func MigrateSteps(config cfg.Config, n int) {
	m := open(config)
	defer m.Close()
	check(m.Steps(n))
}

func check(err error) {
	if err != nil && err != migrate.ErrNoChange {
		if errMapped, ok := err.(migrate.ErrDirty); ok {
			log.Fatal().Err(err).Str("section", "migrate").Int("version", errMapped.Version).Msg("Unable to execute migration")
		} else {
			log.Fatal().Err(err).Str("section", "migrate").Msg("Unable to execute unknown migration")
		}
		return
	}
	log.Info().Str("section", "migrate").Msg("Migrations executed successfully")
}
