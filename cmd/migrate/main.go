package main

import (
	"fmt"
	"log"

	"github.com/spf13/pflag"

	"alumnihub/config"
	"alumnihub/database"
	"alumnihub/migrations"
)

func main() {
	configPath := pflag.String("config", "", "Path to a YAML settings file")
	seed := pflag.Bool("seed", false, "Load sample members and content (development only)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *seed && !cfg.IsDevelopment() {
		log.Fatal("Refusing to seed test data in production")
	}

	// Initialize database connection and run migrations
	err = database.InitDB(cfg.DatabasePath, migrations.Options{SeedTestData: *seed})
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	defer database.DB.Close()

	fmt.Println("Migrations completed successfully!")
}
