// Package queries owns the database connections and the reusable query helpers.
package queries

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Postgres error codes used to classify storage errors
const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// Repo keeps the writer and reader connections
type Repo struct {
	Conn            *gorm.DB
	ConnReader      *gorm.DB
	ConnReaderAdmin *gorm.DB
}

// NewRepo opens all the connections of the configured cluster.
// Readers fall back to the writer when they are not configured.
func NewRepo(cfg config.DatabaseClusterConfig) (*Repo, error) {
	writer, err := Open(cfg.Writer)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	repo := &Repo{Conn: writer, ConnReader: writer, ConnReaderAdmin: writer}

	if cfg.Reader.Host != "" {
		if repo.ConnReader, err = Open(cfg.Reader); err != nil {
			return nil, fmt.Errorf("reader: %w", err)
		}
	}
	if cfg.ReaderAdmin.Host != "" {
		if repo.ConnReaderAdmin, err = Open(cfg.ReaderAdmin); err != nil {
			return nil, fmt.Errorf("reader_admin: %w", err)
		}
	}
	return repo, nil
}

// DSN builds the postgres connection string of a database config
func DSN(cfg config.DatabaseConfig) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, sslmode(cfg.SSLmode))
	if cfg.ApplicationName != "" {
		dsn += " application_name=" + cfg.ApplicationName
	}
	return dsn
}

// URI builds the postgres url used by the migrations
func URI(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslmode(cfg.SSLmode))
}

func sslmode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}

// Open a gorm connection
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Close every distinct connection of the repo
func (repo *Repo) Close() {
	closed := map[*gorm.DB]bool{}
	for _, conn := range []*gorm.DB{repo.Conn, repo.ConnReader, repo.ConnReaderAdmin} {
		if conn == nil || closed[conn] {
			continue
		}
		closed[conn] = true
		if sqlDB, err := conn.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Str("section", "queries").Msg("Unable to close database connection")
			}
		}
	}
}

// Create a new record using the writer connection
func (repo *Repo) Create(model interface{}) error {
	return repo.Conn.Create(model).Error
}

// Update a record using the writer connection
func (repo *Repo) Update(model interface{}) error {
	return repo.Conn.Save(model).Error
}

// IsNotFound godoc
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation is true for errors raised by a unique index
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

// IsUndefinedTable is true when the queried table does not exist yet
func IsUndefinedTable(err error) bool {
	return hasCode(err, pgUndefinedTable)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
