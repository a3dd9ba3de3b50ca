package main

import (
	"appliance-intake-service/internal/adapters/repositories"
	"appliance-intake-service/internal/config"
	"appliance-intake-service/internal/platform/db"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres intake schema ahead of a deploy.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
