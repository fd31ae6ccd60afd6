// Package audit generates AI-powered business automation audits via a
// Groq-compatible chat-completions API.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"audit-delivery-engine/internal/config"
	"audit-delivery-engine/internal/utils"
)

const (
	requestTimeout = 30 * time.Second
	temperature    = 0.7
	maxTokens      = 2500
)

// Client calls the text-generation API. It is constructed once per process
// and reused across invocations.
type Client struct {
	apiKey string
	apiURL string
	model  string
	brand  string
	client *http.Client
}

// NewClient creates a new audit generation client.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.GroqAPIKey,
		apiURL: cfg.GroqAPIURL,
		model:  cfg.GroqModel,
		brand:  cfg.SenderName,
		client: &http.Client{Timeout: requestTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate produces the audit content for a business website. It never fails:
// any API error is logged and replaced by deterministic fallback text so that
// downstream delivery always has usable content. One call, no retries.
func (c *Client) Generate(ctx context.Context, businessURL string) string {
	content, err := c.generate(ctx, businessURL)
	if err != nil {
		utils.GetLogger().Warn("Audit generation failed, using fallback content",
			zap.String("business_url", businessURL),
			zap.Error(err),
		)
		return c.Fallback(businessURL)
	}

	utils.GetLogger().Info("AI audit generated",
		zap.String("business_url", businessURL),
		zap.Int("content_length", len(content)),
	)
	return content
}

// Fallback returns the placeholder audit text naming the business website.
func (c *Client) Fallback(businessURL string) string {
	return fmt.Sprintf("**AI-Powered Business Automation Audit for %s**\n\nThank you for choosing %s. Your audit is being finalized and will be delivered shortly.", businessURL, c.brand)
}

func (c *Client) generate(ctx context.Context, businessURL string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY not set")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: c.buildPrompt(businessURL)}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "Audit generation completed.", nil
	}

	return chat.Choices[0].Message.Content, nil
}

// buildPrompt creates the fixed six-section audit prompt.
func (c *Client) buildPrompt(businessURL string) string {
	return fmt.Sprintf(`As a senior automation consultant at %s, analyze %s and create a detailed "AI-Powered Business Automation Audit" with the following structure:

1. EXECUTIVE SUMMARY: 3-4 key findings on automation potential.
2. IDENTIFIED PROCESSES: 3-5 repetitive tasks suitable for automation.
3. QUICK-WIN AUTOMATIONS: Specific implementable solutions with time estimates.
4. TECHNOLOGY RECOMMENDATIONS: Appropriate tools for implementation.
5. 90-DAY ROADMAP: Phased implementation plan.
6. ROI ANALYSIS: Time and cost savings projections.

Tone: Professional, actionable, value-focused.`, c.brand, businessURL)
}
