package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seology-ai/seology/internal/config"
	"github.com/seology-ai/seology/internal/prompt"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AnthropicClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Config{}
	cfg.Anthropic = config.AnthropicConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
		Timeout:   5 * time.Second,
	}
	return NewAnthropicClient(cfg), server
}

func TestCompleteReturnsTextAndUsage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System == "" || len(req.Messages) != 1 {
			t.Errorf("unexpected request payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "claude-sonnet-4-20250514",
			"content": []map[string]string{{"type": "text", "text": "Your store looks healthy."}},
			"usage":   map[string]int{"input_tokens": 120, "output_tokens": 35},
		})
	})

	resp, err := client.Complete(context.Background(), Request{
		System:   "you are a test",
		Messages: []prompt.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "Your store looks healthy." {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 35 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestCompleteRejectsNonTextContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "claude-sonnet-4-20250514",
			"content": []map[string]string{{"type": "tool_use"}},
			"usage":   map[string]int{"input_tokens": 10, "output_tokens": 0},
		})
	})

	_, err := client.Complete(context.Background(), Request{System: "s"})
	if !errors.Is(err, ErrNonTextContent) {
		t.Fatalf("expected ErrNonTextContent, got %v", err)
	}
}

func TestCompleteClassifiesProviderErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), Request{System: "s"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	cfg := config.Config{}
	cfg.Anthropic = config.AnthropicConfig{BaseURL: "http://localhost:0", Timeout: time.Second}
	client := NewAnthropicClient(cfg)

	_, err := client.Complete(context.Background(), Request{System: "s"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
