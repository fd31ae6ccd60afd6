// Package ses provides audit email delivery via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/models"
	"audit-delivery-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

// AuditEmailParams contains data for one audit delivery email
type AuditEmailParams struct {
	To           string
	CustomerName string
	BusinessURL  string
	AuditContent string
	OrderID      string
}

// EmailResult captures the outcome of a send attempt. Delivery failures are
// reported here, never as errors, so the caller decides what propagates.
type EmailResult struct {
	Success   bool
	MessageID string
	Error     string
}

// tagUnsafePattern matches characters SES message tags do not accept.
var tagUnsafePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

var auditEmailTemplate = template.Must(template.New("audit_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px;">
    <h1 style="color: #4f46e5;">Your AI-Powered Business Audit</h1>
    <p>Hi {{.CustomerName}},</p>
    <p>Your automation analysis for <strong>{{.BusinessURL}}</strong> is ready.</p>
    <div style="background: #f8fafc; padding: 20px; border-left: 4px solid #4f46e5;">
        {{.AuditHTML}}
    </div>
    <p>Best regards,<br>The {{.BrandName}} Team</p>
</body>
</html>`))

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
		fromName:  appCfg.SenderName,
	}, nil
}

// SendAuditEmail delivers the audit to the customer. Any failure, from a bad
// recipient to an SES error, is captured in the result.
func (s *Service) SendAuditEmail(ctx context.Context, params AuditEmailParams) EmailResult {
	if !models.IsValidEmail(params.To) {
		utils.GetLogger().Error("Refusing to send audit email",
			zap.String("to", params.To),
			zap.Error(models.ErrInvalidRecipient),
		)
		return EmailResult{Error: models.ErrInvalidRecipient.Error()}
	}

	if strings.TrimSpace(params.AuditContent) == "" {
		utils.GetLogger().Error("Refusing to send audit email",
			zap.String("to", params.To),
			zap.Error(models.ErrEmptyAuditContent),
		)
		return EmailResult{Error: models.ErrEmptyAuditContent.Error()}
	}

	htmlBody, err := s.renderAuditHTML(params)
	if err != nil {
		utils.GetLogger().Error("Failed to render audit email",
			zap.String("to", params.To),
			zap.Error(err),
		)
		return EmailResult{Error: err.Error()}
	}

	subject := fmt.Sprintf("Your AI-Powered Business Automation Audit for %s | %s", params.BusinessURL, s.fromName)

	input := &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(s.renderAuditText(params)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
		Tags: []types.MessageTag{
			{
				Name:  aws.String("audit"),
				Value: aws.String(SanitizeOrderTag(params.OrderID)),
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send audit email",
			zap.String("to", params.To),
			zap.String("order_id", params.OrderID),
			zap.Error(err),
		)
		return EmailResult{Error: err.Error()}
	}

	utils.GetLogger().Info("Audit email delivered",
		zap.String("to", params.To),
		zap.String("order_id", params.OrderID),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return EmailResult{
		Success:   true,
		MessageID: aws.ToString(result.MessageId),
	}
}

// SanitizeOrderTag replaces characters outside [A-Za-z0-9_-] so the order id
// is usable as an SES message tag value.
func SanitizeOrderTag(orderID string) string {
	return tagUnsafePattern.ReplaceAllString(orderID, "_")
}

// renderAuditHTML renders the HTML email body. The audit text is escaped and
// its newlines converted to line breaks.
func (s *Service) renderAuditHTML(params AuditEmailParams) (string, error) {
	escaped := template.HTMLEscapeString(params.AuditContent)

	data := struct {
		CustomerName string
		BusinessURL  string
		BrandName    string
		AuditHTML    template.HTML
	}{
		CustomerName: params.CustomerName,
		BusinessURL:  params.BusinessURL,
		BrandName:    s.fromName,
		AuditHTML:    template.HTML(strings.ReplaceAll(escaped, "\n", "<br>")),
	}

	var buf bytes.Buffer
	if err := auditEmailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}

	return buf.String(), nil
}

// renderAuditText renders the plain text version
func (s *Service) renderAuditText(params AuditEmailParams) string {
	var buf bytes.Buffer

	buf.WriteString(strings.ToUpper(s.fromName) + " AUDIT\n\n")
	buf.WriteString(fmt.Sprintf("For: %s\n\n", params.BusinessURL))
	buf.WriteString(params.AuditContent)

	return buf.String()
}
