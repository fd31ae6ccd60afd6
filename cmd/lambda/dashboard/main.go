// Dashboard reader Lambda entry point
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/handlers"
	"audit-delivery-engine/internal/services/database"
	"audit-delivery-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	handler := handlers.NewDashboardHandler(cfg, database.NewSaleRepository(db))

	// Start Lambda
	lambda.Start(handler.Handle)
}
