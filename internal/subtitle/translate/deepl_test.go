package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeepLLangCode(t *testing.T) {
	cases := map[string]string{
		"zh-Hans": "ZH-HANS",
		"zh-Hant": "ZH-HANT",
		"en":      "EN-US",
		"en-GB":   "EN-GB",
		"pt-PT":   "PT-PT",
		"nb-NO":   "NB",
		"de-DE":   "DE",
		"ja-JP":   "JA",
	}
	for in, want := range cases {
		if got := deeplLangCode(in); got != want {
			t.Fatalf("deeplLangCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeepLTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key sk-test-secret" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("target_lang") != "FR" || len(r.PostForm["text"]) != 2 {
			t.Fatalf("unexpected form %v", r.PostForm)
		}
		if r.PostForm.Get("formality") != "prefer_more" {
			t.Fatalf("expected formality from preset, got %q", r.PostForm.Get("formality"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "Bonjour"}, {"text": "Au revoir"}},
		})
	}))
	defer server.Close()

	d := NewDeepLTranslator(testClientConfig(server.URL))
	got, err := d.Translate(context.Background(), []string{"Hello", "Goodbye"}, Options{TargetLang: "fr-FR", Preset: "corporate"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got[0] != "Bonjour" || got[1] != "Au revoir" {
		t.Fatalf("unexpected translations %#v", got)
	}
}

func TestDeepLCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"translations": []any{}})
	}))
	defer server.Close()

	d := NewDeepLTranslator(testClientConfig(server.URL))
	if _, err := d.Translate(context.Background(), []string{"Hello"}, Options{TargetLang: "fr"}); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
}
