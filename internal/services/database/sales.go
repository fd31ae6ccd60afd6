// Package database provides database operations for the audit delivery engine.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"audit-delivery-engine/internal/models"
)

// SaleRepository handles sale record database operations.
type SaleRepository struct {
	db *DB
}

// NewSaleRepository creates a new sale repository.
func NewSaleRepository(db *DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Upsert writes a sale record keyed by order id. A repeated order id
// overwrites the previous record (last write wins); created_at is preserved
// from the first write.
func (r *SaleRepository) Upsert(ctx context.Context, record *models.SaleRecord) error {
	if strings.TrimSpace(record.OrderID) == "" {
		return models.ErrEmptyOrderID
	}

	query := `
		INSERT INTO sales (order_id, customer_email, business_url, amount, currency, audit_generated, email_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (order_id) DO UPDATE SET
			customer_email = EXCLUDED.customer_email,
			business_url = EXCLUDED.business_url,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			audit_generated = EXCLUDED.audit_generated,
			email_delivered = EXCLUDED.email_delivered,
			updated_at = EXCLUDED.updated_at`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		record.OrderID,
		record.CustomerEmail,
		record.BusinessURL,
		record.Amount,
		record.Currency,
		record.AuditGenerated,
		record.EmailDelivered,
		createdAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert sale: %w", err)
	}

	return nil
}

// GetRecent retrieves the most recent sale records ordered by creation time
// descending.
func (r *SaleRepository) GetRecent(ctx context.Context, limit int) ([]*models.SaleRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT order_id, customer_email, business_url, amount, currency, audit_generated, email_delivered, created_at
		FROM sales
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var records []*models.SaleRecord
	for rows.Next() {
		var rec models.SaleRecord

		err := rows.Scan(
			&rec.OrderID,
			&rec.CustomerEmail,
			&rec.BusinessURL,
			&rec.Amount,
			&rec.Currency,
			&rec.AuditGenerated,
			&rec.EmailDelivered,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		records = append(records, &rec)
	}

	return records, nil
}

// GetByOrderID retrieves a single sale record, or nil when absent.
func (r *SaleRepository) GetByOrderID(ctx context.Context, orderID string) (*models.SaleRecord, error) {
	query := `
		SELECT order_id, customer_email, business_url, amount, currency, audit_generated, email_delivered, created_at
		FROM sales
		WHERE order_id = $1`

	var rec models.SaleRecord
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&rec.OrderID,
		&rec.CustomerEmail,
		&rec.BusinessURL,
		&rec.Amount,
		&rec.Currency,
		&rec.AuditGenerated,
		&rec.EmailDelivered,
		&rec.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	return &rec, nil
}
