package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects the database backend. Path is used by SQLite, DSN by Postgres.
type Options struct {
	Driver  string
	Path    string
	DSN     string
	Verbose bool
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(opts Options, log *zap.Logger) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dialector, target, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if opts.Verbose {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database initialized", zap.String("driver", opts.Driver), zap.String("target", target))

	return &Database{DB: db}, nil
}

// Migrate creates or updates the schema for all persisted entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Appointment{},
		&entities.Car{},
		&entities.ImportSession{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(opts Options) (gorm.Dialector, string, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		if opts.Path == "" {
			return nil, "", fmt.Errorf("sqlite database path is empty")
		}
		return sqlite.Open(opts.Path), opts.Path, nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, "", fmt.Errorf("postgres DSN is empty")
		}
		return postgres.Open(opts.DSN), "postgres", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Ping checks that the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
