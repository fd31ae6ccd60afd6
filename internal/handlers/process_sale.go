package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/models"
	"audit-delivery-engine/internal/services/ses"
	"audit-delivery-engine/internal/utils"
)

// AuditGenerator produces audit content for a business website. It must not
// fail; fallback content substitutes for upstream errors.
type AuditGenerator interface {
	Generate(ctx context.Context, businessURL string) string
}

// AuditMailer delivers the audit email, capturing failure in the result.
type AuditMailer interface {
	SendAuditEmail(ctx context.Context, params ses.AuditEmailParams) ses.EmailResult
}

// SaleStore persists and reads sale records.
type SaleStore interface {
	Upsert(ctx context.Context, record *models.SaleRecord) error
	GetRecent(ctx context.Context, limit int) ([]*models.SaleRecord, error)
}

// AuditArchiver keeps a best-effort copy of each generated audit.
type AuditArchiver interface {
	StoreAudit(ctx context.Context, orderID, businessURL, content string) (string, error)
}

// ProcessSaleHandler handles payment-platform sale webhooks.
type ProcessSaleHandler struct {
	auditor  AuditGenerator
	mailer   AuditMailer
	store    SaleStore
	archiver AuditArchiver // optional
	currency string
}

// NewProcessSaleHandler creates a new sale processor. The archiver may be nil
// when no archive bucket is configured.
func NewProcessSaleHandler(cfg *config.Config, auditor AuditGenerator, mailer AuditMailer, store SaleStore, archiver AuditArchiver) *ProcessSaleHandler {
	return &ProcessSaleHandler{
		auditor:  auditor,
		mailer:   mailer,
		store:    store,
		archiver: archiver,
		currency: cfg.DefaultCurrency,
	}
}

// ProcessSaleResponse is the webhook acknowledgement body.
type ProcessSaleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
	// JSON key kept for compatibility with existing webhook consumers.
	Logged bool `json:"logged_to_firebase"`
}

// Handle processes one sale notification: normalize, generate the audit,
// email it, archive it, record the sale. Email and persistence failures are
// captured, never surfaced as transport errors; the response stays 200.
func (h *ProcessSaleHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger().With(utils.String("request_id", uuid.New().String()))
	headers := jsonHeaders("POST,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	if request.HTTPMethod != http.MethodPost {
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}

	form, err := url.ParseQuery(request.Body)
	if err != nil {
		logger.Error("Failed to parse webhook body", utils.Error(err))
		return errorResponse(headers, http.StatusBadRequest, "Invalid data format")
	}

	sale := models.SaleNotificationFromForm(form)
	orderID := sale.OrderID(time.Now())
	businessURL := sale.BusinessURL()
	amount := sale.AmountValue()

	logger.Info("Processing order",
		utils.String("order_id", orderID),
		utils.String("business_url", businessURL),
	)

	auditContent := h.auditor.Generate(ctx, businessURL)

	emailResult := h.mailer.SendAuditEmail(ctx, ses.AuditEmailParams{
		To:           sale.Email,
		CustomerName: sale.DisplayName(),
		BusinessURL:  businessURL,
		AuditContent: auditContent,
		OrderID:      orderID,
	})

	if h.archiver != nil {
		if _, err := h.archiver.StoreAudit(ctx, orderID, businessURL, auditContent); err != nil {
			logger.Warn("Failed to archive audit (non-critical)",
				utils.String("order_id", orderID),
				utils.Error(err),
			)
		}
	}

	record := &models.SaleRecord{
		OrderID:        orderID,
		CustomerEmail:  optionalString(sale.Email),
		BusinessURL:    optionalString(businessURL),
		Amount:         &amount,
		Currency:       defaultString(sale.Currency, h.currency),
		AuditGenerated: true,
		EmailDelivered: emailResult.Success,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.store.Upsert(ctx, record); err != nil {
		logger.Error("Failed to record sale (non-critical)",
			utils.String("order_id", orderID),
			utils.Error(err),
		)
	}

	message := "Audit delivered."
	if !emailResult.Success {
		message = "Audit generated, check logs."
	}

	logger.Info("Sale processed",
		utils.String("order_id", orderID),
		utils.Bool("email_delivered", emailResult.Success),
	)

	return jsonResponse(headers, http.StatusOK, ProcessSaleResponse{
		Success: emailResult.Success,
		Message: message,
		OrderID: orderID,
		Logged:  true,
	})
}

// optionalString returns nil for empty values so they persist as NULL.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// defaultString returns the fallback when the value is empty.
func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
