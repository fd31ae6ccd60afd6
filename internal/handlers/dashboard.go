package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/models"
	"audit-delivery-engine/internal/utils"
)

// recentSalesLimit bounds dashboard reads; the summary is a display window,
// not a full reporting aggregate.
const recentSalesLimit = 50

// DashboardHandler serves the sales dashboard read endpoint.
type DashboardHandler struct {
	store     SaleStore
	secretKey string
	currency  string
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(cfg *config.Config, store SaleStore) *DashboardHandler {
	return &DashboardHandler{
		store:     store,
		secretKey: cfg.DashboardSecretKey,
		currency:  cfg.DefaultCurrency,
	}
}

// DashboardResponse is the dashboard payload.
type DashboardResponse struct {
	Summary     models.DashboardSummary `json:"summary"`
	RecentSales []models.SaleView       `json:"recentSales"`
}

// Handle authenticates the caller by shared secret, then returns the summary
// and projected records for the most recent sales.
func (h *DashboardHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := jsonHeaders("GET,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	// Auth short-circuits before any data access. An unset secret locks the
	// endpoint rather than opening it.
	key := request.QueryStringParameters["key"]
	if h.secretKey == "" || key != h.secretKey {
		return errorResponse(headers, http.StatusUnauthorized, "Unauthorized. Invalid or missing dashboard key.")
	}

	logger.Info("Dashboard data request received")

	records, err := h.store.GetRecent(ctx, recentSalesLimit)
	if err != nil {
		logger.Error("Failed to fetch dashboard data", utils.Error(err))
		return jsonResponse(headers, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch dashboard data",
			"message": err.Error(),
		})
	}

	summary, sales := models.BuildDashboard(records, h.currency, time.Now())

	return jsonResponse(headers, http.StatusOK, DashboardResponse{
		Summary:     summary,
		RecentSales: sales,
	})
}
