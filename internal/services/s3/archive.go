// Package s3service archives generated audits for the audit delivery engine
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appConfig "audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/utils"
)

// Service handles audit archive operations
type Service struct {
	client     *s3.Client
	bucketName string
}

// NewService creates a new archive service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	if appCfg.ArchiveBucket == "" {
		return nil, fmt.Errorf("AUDIT_ARCHIVE_BUCKET not configured")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:     s3.NewFromConfig(cfg),
		bucketName: appCfg.ArchiveBucket,
	}, nil
}

// StoreAudit uploads a copy of a generated audit, keyed by date and order id.
// Callers treat a failure here as non-critical.
func (s *Service) StoreAudit(ctx context.Context, orderID, businessURL, content string) (string, error) {
	key := AuditKey(orderID, time.Now().UTC())
	body := fmt.Sprintf("Business: %s\nOrder: %s\n\n%s", businessURL, orderID, content)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(body)),
		ContentType: aws.String("text/plain; charset=utf-8"),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		utils.GetLogger().Error("Failed to archive audit",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to archive audit: %w", err)
	}

	utils.GetLogger().Info("Archived audit",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(body)),
	)

	return key, nil
}

// AuditKey builds the archive object key for an order at a point in time.
func AuditKey(orderID string, at time.Time) string {
	return "audits/" + at.Format("2006/01/02") + "/" + sanitizeKeyPart(orderID) + ".txt"
}

// sanitizeKeyPart removes unsafe characters from an object key segment.
func sanitizeKeyPart(part string) string {
	safe := ""
	for _, r := range part {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			safe += string(r)
		}
	}
	if safe == "" {
		safe = "unknown-order"
	}
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe
}
