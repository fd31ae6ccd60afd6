package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/models"
	"audit-delivery-engine/internal/services/ses"
)

type stubAuditor struct {
	content string
	calls   int
}

func (s *stubAuditor) Generate(ctx context.Context, businessURL string) string {
	s.calls++
	return s.content
}

type stubMailer struct {
	result     ses.EmailResult
	lastParams ses.AuditEmailParams
}

func (s *stubMailer) SendAuditEmail(ctx context.Context, params ses.AuditEmailParams) ses.EmailResult {
	s.lastParams = params
	return s.result
}

type stubStore struct {
	upserted       []*models.SaleRecord
	upsertErr      error
	recent         []*models.SaleRecord
	recentErr      error
	getRecentCalls int
}

func (s *stubStore) Upsert(ctx context.Context, record *models.SaleRecord) error {
	s.upserted = append(s.upserted, record)
	return s.upsertErr
}

func (s *stubStore) GetRecent(ctx context.Context, limit int) ([]*models.SaleRecord, error) {
	s.getRecentCalls++
	return s.recent, s.recentErr
}

type stubArchiver struct {
	keys []string
	err  error
}

func (s *stubArchiver) StoreAudit(ctx context.Context, orderID, businessURL, content string) (string, error) {
	s.keys = append(s.keys, orderID)
	return "audits/test/" + orderID + ".txt", s.err
}

func testProcessSaleConfig() *config.Config {
	return &config.Config{DefaultCurrency: "ZAR", DashboardSecretKey: "s3cret"}
}

func saleWebhookBody() string {
	form := url.Values{}
	form.Set("email", "jane@example.com")
	form.Set("sale_id", "GPLA-123")
	form.Set("price", "4999")
	form.Set("custom_fields[website]", "https://www.example.com")
	return form.Encode()
}

func TestProcessSaleRejectsWrongMethod(t *testing.T) {
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{}, &stubMailer{}, &stubStore{}, nil)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Contains(t, resp.Body, "Method not allowed")
}

func TestProcessSaleRejectsMalformedBody(t *testing.T) {
	store := &stubStore{}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{}, &stubMailer{}, store, nil)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       "price=%zz",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, "Invalid data format")
	assert.Empty(t, store.upserted, "no side effects on parse failure")
}

func TestProcessSaleHappyPath(t *testing.T) {
	auditor := &stubAuditor{content: "Audit body"}
	mailer := &stubMailer{result: ses.EmailResult{Success: true, MessageID: "msg-1"}}
	store := &stubStore{}
	archiver := &stubArchiver{}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), auditor, mailer, store, archiver)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       saleWebhookBody(),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body ProcessSaleResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "GPLA-123", body.OrderID)
	assert.Equal(t, "Audit delivered.", body.Message)
	assert.True(t, body.Logged)

	// Mailer received normalized fields
	assert.Equal(t, "jane@example.com", mailer.lastParams.To)
	assert.Equal(t, "jane", mailer.lastParams.CustomerName)
	assert.Equal(t, "example.com", mailer.lastParams.BusinessURL)
	assert.Equal(t, "Audit body", mailer.lastParams.AuditContent)

	// Record captured the outcome
	require.Len(t, store.upserted, 1)
	rec := store.upserted[0]
	assert.Equal(t, "GPLA-123", rec.OrderID)
	assert.True(t, rec.AuditGenerated)
	assert.True(t, rec.EmailDelivered)
	assert.Equal(t, "ZAR", rec.Currency)
	require.NotNil(t, rec.Amount)
	assert.InDelta(t, 49.99, *rec.Amount, 0.001)

	assert.Equal(t, []string{"GPLA-123"}, archiver.keys)
}

func TestProcessSaleSynthesizesOrderID(t *testing.T) {
	mailer := &stubMailer{result: ses.EmailResult{Success: true}}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{content: "Audit body"}, mailer, &stubStore{}, nil)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       "email=jane%40example.com",
	})
	require.NoError(t, err)

	var body ProcessSaleResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, strings.HasPrefix(body.OrderID, "ORD-"))
}

func TestProcessSaleEmailFailureStays200(t *testing.T) {
	mailer := &stubMailer{result: ses.EmailResult{Error: "provider rejected"}}
	store := &stubStore{}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{content: "Audit body"}, mailer, store, nil)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       saleWebhookBody(),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body ProcessSaleResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Audit generated, check logs.", body.Message)

	require.Len(t, store.upserted, 1)
	assert.False(t, store.upserted[0].EmailDelivered)
	assert.True(t, store.upserted[0].AuditGenerated)
}

func TestProcessSalePersistenceFailureStays200(t *testing.T) {
	store := &stubStore{upsertErr: errors.New("connection refused")}
	mailer := &stubMailer{result: ses.EmailResult{Success: true}}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{content: "Audit body"}, mailer, store, nil)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       saleWebhookBody(),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body ProcessSaleResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, body.Success)
}

func TestProcessSaleArchiveFailureStays200(t *testing.T) {
	archiver := &stubArchiver{err: errors.New("bucket missing")}
	mailer := &stubMailer{result: ses.EmailResult{Success: true}}
	handler := NewProcessSaleHandler(testProcessSaleConfig(), &stubAuditor{content: "Audit body"}, mailer, &stubStore{}, archiver)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       saleWebhookBody(),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
