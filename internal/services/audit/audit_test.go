package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-delivery-engine/internal/config"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		GroqAPIKey: "test-key",
		GroqAPIURL: apiURL,
		GroqModel:  "test-model",
		SenderName: "Cyrnel Origin",
	}
}

func TestGenerateReturnsAPIContent(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Detailed audit body"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	content := client.Generate(context.Background(), "example.com")

	assert.Equal(t, "Detailed audit body", content)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "example.com")
}

func TestGenerateFallbackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	content := client.Generate(context.Background(), "example.com")

	assert.NotEmpty(t, content)
	assert.Contains(t, content, "example.com")
	assert.Contains(t, content, "being finalized")
}

func TestGenerateFallbackWithoutAPIKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.GroqAPIKey = ""

	client := NewClient(cfg)
	content := client.Generate(context.Background(), "example.com")

	assert.Contains(t, content, "example.com")
	assert.Contains(t, content, "Cyrnel Origin")
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	content := client.Generate(context.Background(), "example.com")

	assert.Equal(t, "Audit generation completed.", content)
}

func TestBuildPromptSections(t *testing.T) {
	client := NewClient(testConfig("http://unused"))
	prompt := client.buildPrompt("example.com")

	for _, section := range []string{
		"EXECUTIVE SUMMARY",
		"IDENTIFIED PROCESSES",
		"QUICK-WIN AUTOMATIONS",
		"TECHNOLOGY RECOMMENDATIONS",
		"90-DAY ROADMAP",
		"ROI ANALYSIS",
	} {
		assert.Contains(t, prompt, section)
	}

	assert.Contains(t, prompt, "example.com")
	assert.Contains(t, prompt, "Cyrnel Origin")
}
