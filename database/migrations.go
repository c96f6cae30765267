package database

import (
	"database/sql"
	"log"

	"alumnihub/migrations"
)

// RunMigrations runs all database migrations against db
func RunMigrations(db *sql.DB, opts migrations.Options) error {
	log.Println("Running database migrations...")

	// Run all migrations from the migrations package
	if err := migrations.RunMigrations(db, opts); err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
