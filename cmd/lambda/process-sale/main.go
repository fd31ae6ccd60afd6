// Sale processor Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/handlers"
	"audit-delivery-engine/internal/services/audit"
	"audit-delivery-engine/internal/services/database"
	s3service "audit-delivery-engine/internal/services/s3"
	"audit-delivery-engine/internal/services/ses"
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

	ctx := context.Background()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mailer, err := ses.NewService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize SES: %v", err)
	}

	// Archive is optional; the processor runs without it.
	var archiver handlers.AuditArchiver
	if cfg.ArchiveBucket != "" {
		svc, err := s3service.NewService(ctx, cfg)
		if err != nil {
			utils.GetLogger().Warn("Audit archive disabled", utils.String("reason", err.Error()))
		} else {
			archiver = svc
		}
	}

	handler := handlers.NewProcessSaleHandler(cfg, audit.NewClient(cfg), mailer, database.NewSaleRepository(db), archiver)

	// Start Lambda
	lambda.Start(handler.Handle)
}
