package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGenerator(&Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

func TestComplete_Success(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"**SLA**: 2 hours"}}],
			"usage":{"prompt_tokens":120,"completion_tokens":8,"total_tokens":128}
		}`))
	})

	text, usage, err := g.Complete(context.Background(), "you are an assistant", "find the SLA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "**SLA**: 2 hours" {
		t.Fatalf("unexpected text %q", text)
	}
	if usage.TotalTokens != 128 || usage.PromptTokens != 120 || usage.CompletionTokens != 8 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}

func TestComplete_ServerError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})

	if _, _, err := g.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[],"usage":{"total_tokens":0}}`))
	})

	if _, _, err := g.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
