package db

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// MemoryPath opens a private in-memory database
const MemoryPath = "file::memory:"

var DB *gorm.DB

// Initialize sets up the database connection at path and runs migrations
func Initialize(path string) error {
	if path != MemoryPath {
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return goerr.Wrap(err, "failed to create storage directory", goerr.V("path", path))
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return goerr.Wrap(err, "failed to connect to database", goerr.V("path", path))
	}

	// Every pooled connection would otherwise see its own empty in-memory database
	if path == MemoryPath {
		sqlDB, err := db.DB()
		if err != nil {
			return goerr.Wrap(err, "failed to access database handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db

	if err := runMigrations(); err != nil {
		return goerr.Wrap(err, "failed to run migrations")
	}

	return nil
}

// runMigrations creates/updates the database schema
func runMigrations() error {
	return DB.AutoMigrate(
		&models.AuthCookie{},
	)
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		DB = nil
		return sqlDB.Close()
	}
	return nil
}
