package models

import (
	"fmt"
	"time"
)

// Dashboard timestamps are rendered for the en-ZA locale. Fall back to UTC
// when the host has no tzdata for Johannesburg.
var displayLocation = func() *time.Location {
	loc, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		return time.UTC
	}
	return loc
}()

const displayTimeLayout = "2006/01/02, 15:04:05"

// fieldNotAvailable substitutes for fields a record was stored without.
const fieldNotAvailable = "N/A"

// SaleView is the dashboard projection of one SaleRecord.
type SaleView struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	CustomerEmail  string `json:"customerEmail"`
	BusinessURL    string `json:"businessUrl"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	AuditGenerated bool   `json:"auditGenerated"`
	EmailDelivered bool   `json:"emailDelivered"`
	Timestamp      string `json:"timestamp"`
}

// DashboardSummary aggregates the most recent sales for display. It is
// computed on read and never persisted.
type DashboardSummary struct {
	TotalRevenue         string `json:"totalRevenue"`
	TotalSales           int    `json:"totalSales"`
	SuccessRate          string `json:"successRate"`
	SuccessfulDeliveries int    `json:"successfulDeliveries"`
	LastUpdated          string `json:"lastUpdated"`
}

// ProjectSale maps a record into its dashboard shape, substituting "N/A" for
// absent fields and defaulting the currency.
func ProjectSale(rec *SaleRecord, defaultCurrency string) SaleView {
	view := SaleView{
		ID:             rec.OrderID,
		OrderID:        rec.OrderID,
		CustomerEmail:  fieldNotAvailable,
		BusinessURL:    fieldNotAvailable,
		Amount:         fieldNotAvailable,
		Currency:       rec.Currency,
		AuditGenerated: rec.AuditGenerated,
		EmailDelivered: rec.EmailDelivered,
		Timestamp:      fieldNotAvailable,
	}

	if rec.CustomerEmail != nil && *rec.CustomerEmail != "" {
		view.CustomerEmail = *rec.CustomerEmail
	}
	if rec.BusinessURL != nil && *rec.BusinessURL != "" {
		view.BusinessURL = *rec.BusinessURL
	}
	if rec.Amount != nil {
		view.Amount = fmt.Sprintf("%.2f", *rec.Amount)
	}
	if view.Currency == "" {
		view.Currency = defaultCurrency
	}
	if !rec.CreatedAt.IsZero() {
		view.Timestamp = rec.CreatedAt.In(displayLocation).Format(displayTimeLayout)
	}

	return view
}

// BuildDashboard projects the given records and aggregates the summary over
// them. The success rate is one-decimal and guards against an empty window.
func BuildDashboard(records []*SaleRecord, defaultCurrency string, now time.Time) (DashboardSummary, []SaleView) {
	views := make([]SaleView, 0, len(records))

	var totalRevenue float64
	var successfulDeliveries int

	for _, rec := range records {
		views = append(views, ProjectSale(rec, defaultCurrency))

		if rec.Amount != nil {
			totalRevenue += *rec.Amount
		}
		if rec.EmailDelivered {
			successfulDeliveries++
		}
	}

	totalSales := len(records)
	successRate := "0.0"
	if totalSales > 0 {
		successRate = fmt.Sprintf("%.1f", float64(successfulDeliveries)/float64(totalSales)*100)
	}

	summary := DashboardSummary{
		TotalRevenue:         fmt.Sprintf("%.2f", totalRevenue),
		TotalSales:           totalSales,
		SuccessRate:          successRate,
		SuccessfulDeliveries: successfulDeliveries,
		LastUpdated:          now.UTC().Format(time.RFC3339),
	}

	return summary, views
}
