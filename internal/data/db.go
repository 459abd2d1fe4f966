package data

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm wraps an already opened PostgreSQL pool in a GORM handle. The
// pool keeps whichever database/sql driver opened it.
func OpenGorm(db *sql.DB, logLevel logger.LogLevel) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the tables of every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Property{},
		&Image{},
		&Review{},
		&Booking{},
	)
}
