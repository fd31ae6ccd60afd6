package s3service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuditKey(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "audits/2026/08/01/ORD-123.txt", AuditKey("ORD-123", at))
	assert.Equal(t, "audits/2026/08/01/ORD123.txt", AuditKey("ORD/123", at))
	assert.Equal(t, "audits/2026/08/01/unknown-order.txt", AuditKey("///", at))
}
