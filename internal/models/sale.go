// Package models defines the data structures for the audit delivery engine.
package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is used when a webhook carries no currency field.
const DefaultCurrency = "ZAR"

// BusinessURLNotProvided is recorded when a sale carries no website field.
const BusinessURLNotProvided = "Not provided"

// urlPrefixPattern strips an optional scheme and "www." prefix. Anchored so
// repeated normalization is a no-op.
var urlPrefixPattern = regexp.MustCompile(`^(https?://)?(www\.)?`)

// SaleNotification is the subset of a payment-platform webhook body that the
// engine consumes. Every field is optional; derivations below supply defaults.
type SaleNotification struct {
	Email         string
	SaleID        string
	ResourceID    string
	Website       string
	CustomWebsite string
	Price         string
	Currency      string
}

// SaleNotificationFromForm extracts the consumed fields from a parsed
// URL-encoded webhook body.
func SaleNotificationFromForm(form url.Values) *SaleNotification {
	return &SaleNotification{
		Email:         form.Get("email"),
		SaleID:        form.Get("sale_id"),
		ResourceID:    form.Get("resource[id]"),
		Website:       form.Get("website"),
		CustomWebsite: form.Get("custom_fields[website]"),
		Price:         form.Get("price"),
		Currency:      form.Get("currency"),
	}
}

// OrderID derives the order identifier: the explicit sale id, then the nested
// resource id, then a timestamp-based fallback.
func (n *SaleNotification) OrderID(now time.Time) string {
	if n.SaleID != "" {
		return n.SaleID
	}
	if n.ResourceID != "" {
		return n.ResourceID
	}
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// BusinessURL derives the normalized business website: the custom field wins
// over the plain field, with a sentinel value when both are absent.
func (n *SaleNotification) BusinessURL() string {
	raw := n.CustomWebsite
	if raw == "" {
		raw = n.Website
	}
	if raw == "" {
		raw = BusinessURLNotProvided
	}
	return NormalizeBusinessURL(raw)
}

// Amount derives the sale amount from the minor-unit price field, formatted
// with two decimal places. Missing or unparsable prices yield "0.00".
func (n *SaleNotification) Amount() string {
	minor, err := strconv.Atoi(strings.TrimSpace(n.Price))
	if err != nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

// AmountValue returns the derived amount as a number for persistence.
func (n *SaleNotification) AmountValue() float64 {
	value, _ := strconv.ParseFloat(n.Amount(), 64)
	return value
}

// DisplayName derives a customer display name from the email local part.
func (n *SaleNotification) DisplayName() string {
	return strings.Split(n.Email, "@")[0]
}

// NormalizeBusinessURL strips an optional scheme and "www." prefix.
func NormalizeBusinessURL(raw string) string {
	return urlPrefixPattern.ReplaceAllString(strings.TrimSpace(raw), "")
}

// SaleRecord is the persisted representation of one processed transaction,
// keyed by order id. Nullable fields stay nil when the webhook omitted them.
type SaleRecord struct {
	OrderID        string
	CustomerEmail  *string
	BusinessURL    *string
	Amount         *float64
	Currency       string
	AuditGenerated bool
	EmailDelivered bool
	CreatedAt      time.Time
}
