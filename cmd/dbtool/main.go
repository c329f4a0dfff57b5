package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Maintenance tool: applies the indexes the hot paths rely on. AutoMigrate
// creates them too; this exists for databases migrated by hand.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_user_symbol ON wallet_balances (user_id, symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_matures_at ON predictions (matures_at)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_settled_at ON predictions (settled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_deposits_approved ON deposits (approved)`,
		`CREATE INDEX IF NOT EXISTS idx_sends_status ON sends (status)`,
	}

	for _, stmt := range statements {
		log.Printf("Executing: %s", stmt)
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute statement: %v", err)
		}
	}

	log.Println("Indexes ensured successfully")
}
