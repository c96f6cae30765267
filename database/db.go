package database

import (
	"database/sql"
	"fmt"
	"time"

	"alumnihub/migrations"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var DB *sql.DB

// InitDB opens the database at path into DB and brings its schema up to date
func InitDB(path string, opts migrations.Options) error {
	db, err := Open(path)
	if err != nil {
		return err
	}

	if err := RunMigrations(db, opts); err != nil {
		db.Close()
		return err
	}

	DB = db
	return nil
}

// Open connects to a sqlite database without migrating it
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "./alumnihub.db"
	}

	// Add connection parameters to better handle concurrency
	dsn := path
	if path != MemoryPath {
		dsn = path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == MemoryPath {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Minute * 5)

		// Execute PRAGMA statements for better concurrency handling
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, err
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
			db.Close()
			return nil, err
		}
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
