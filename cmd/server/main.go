// Package main provides a local HTTP server for development and testing.
// It wraps the same handlers the Lambda entry points use behind net/http.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/cors"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/handlers"
	"audit-delivery-engine/internal/services/audit"
	"audit-delivery-engine/internal/services/database"
	s3service "audit-delivery-engine/internal/services/s3"
	"audit-delivery-engine/internal/services/ses"
	"audit-delivery-engine/internal/utils"
)

// lambdaHandlerFunc is the signature shared by all API Gateway handlers.
type lambdaHandlerFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	ctx := context.Background()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	mailer, err := ses.NewService(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize SES: %v", err)
	}

	var archiver handlers.AuditArchiver
	if cfg.ArchiveBucket != "" {
		svc, err := s3service.NewService(ctx, cfg)
		if err != nil {
			log.Printf("Warning: audit archive disabled: %v", err)
		} else {
			archiver = svc
		}
	}

	saleRepo := database.NewSaleRepository(db)
	processSale := handlers.NewProcessSaleHandler(cfg, audit.NewClient(cfg), mailer, saleRepo, archiver)
	dashboard := handlers.NewDashboardHandler(cfg, saleRepo)
	health, err := handlers.NewHealthHandler()
	if err != nil {
		log.Fatalf("Failed to create health handler: %v", err)
	}
	defer health.Close()

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/process-sale", adapt(processSale.Handle))
	mux.HandleFunc("/api/dashboard", adapt(dashboard.Handle))
	mux.HandleFunc("/health", adapt(health.Handle))

	// Order lookup for local debugging
	mux.HandleFunc("/api/sale", saleLookupHandler(saleRepo))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Audit Delivery Engine API Server")
	log.Printf("Webhook:   http://localhost:%s/webhook/process-sale", port)
	log.Printf("Dashboard: http://localhost:%s/api/dashboard?key=...", port)
	log.Printf("Health:    http://localhost:%s/health", port)

	log.Printf("Starting HTTP server on %s...", addr)
	if err := http.ListenAndServe(addr, c.Handler(mux)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// adapt bridges a net/http request into the API Gateway handler shape so the
// local server and the Lambdas share one code path.
func adapt(handle lambdaHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusInternalServerError)
			return
		}
		defer r.Body.Close()

		query := map[string]string{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		resp, err := handle(r.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Body:                  string(body),
			QueryStringParameters: query,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write([]byte(resp.Body))
	}
}

// saleLookupHandler returns one sale record by order id.
func saleLookupHandler(repo *database.SaleRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		orderID := r.URL.Query().Get("order_id")
		if orderID == "" {
			http.Error(w, "Missing order_id", http.StatusBadRequest)
			return
		}

		record, err := repo.GetByOrderID(r.Context(), orderID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if record == nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(record)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
