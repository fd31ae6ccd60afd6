package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"audit-delivery-engine/internal/config"
)

const createSalesTable = `
CREATE TABLE IF NOT EXISTS sales (
    order_id        TEXT PRIMARY KEY,
    customer_email  TEXT,
    business_url    TEXT,
    amount          NUMERIC(12,2),
    currency        TEXT NOT NULL DEFAULT 'ZAR',
    audit_generated BOOLEAN NOT NULL DEFAULT FALSE,
    email_delivered BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createSalesIndex = `
CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC)`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		databaseURL = cfg.DatabaseURL()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("Connected to database successfully!")
	fmt.Println()

	fmt.Println("Creating sales schema...")
	for _, stmt := range []string{createSalesTable, createSalesIndex} {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			fmt.Printf("Failed to execute statement: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Schema created successfully!")
	fmt.Println()

	// Verify setup
	var saleCount int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&saleCount); err != nil {
		fmt.Printf("Warning: Could not count sales: %v\n", err)
	} else {
		fmt.Printf("Sales in database: %d\n", saleCount)
	}

	fmt.Println()
	fmt.Println("Database initialization completed successfully!")
}
