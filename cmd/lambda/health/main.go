// Health check Lambda entry point
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"audit-delivery-engine/internal/handlers"
	"audit-delivery-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewHealthHandler()
	if err != nil {
		log.Fatalf("Failed to create health handler: %v", err)
	}
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
