package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gemini-test:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "sk-test-secret" {
			t.Fatal("missing api key header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content":      map[string]any{"parts": []any{map[string]any{"text": `["Hola"]`}}},
					"finishReason": "STOP",
				},
			},
		})
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.Model = "gemini-test"
	g := NewGeminiTranslator(cfg)
	got, err := g.Translate(context.Background(), []string{"Hello"}, Options{TargetLang: "es-ES"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got[0] != "Hola" {
		t.Fatalf("unexpected translation %q", got[0])
	}
}

func TestGeminiBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	}))
	defer server.Close()

	g := NewGeminiTranslator(testClientConfig(server.URL))
	if _, err := g.Translate(context.Background(), []string{"Hello"}, Options{TargetLang: "es"}); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
