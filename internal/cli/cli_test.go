package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vtt-translator/backend/internal/auth"
	"github.com/vtt-translator/backend/internal/config"
	"github.com/vtt-translator/backend/internal/subtitle/vtt"
)

const lectureVTT = `WEBVTT

00:00:01.000 --> 00:00:03.000
Good morning and welcome to the lecture

00:00:03.500 --> 00:00:06.000
Today we talk about subtitles
`

// fakeOpenAI answers chat completions with "T<n>" for every numbered cue
func fakeOpenAI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		user := req.Messages[len(req.Messages)-1].Content
		var out []string
		for _, line := range strings.Split(user, "\n") {
			if strings.HasPrefix(line, "[") {
				out = append(out, fmt.Sprintf("T%d", len(out)+1))
			}
		}
		content, _ := json.Marshal(map[string]any{"translations": out})
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": string(content)}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func setTestEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv(envFileOverride, "")
	t.Setenv("OPENAI_API_KEY", "sk-cli-test")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("TRANSLATE_RATE_PER_SEC", "0")
	t.Setenv("TRANSLATE_RETRY_ATTEMPTS", "1")
	t.Setenv("API_BEARER", "cli-test-bearer-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTranslateCommandWritesFiles(t *testing.T) {
	srv, calls := fakeOpenAI(t)
	setTestEnv(t, srv.URL)

	dir := t.TempDir()
	infile := filepath.Join(dir, "lecture.vtt")
	if err := os.WriteFile(infile, []byte(lectureVTT), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "translate", infile, "--langs", "de-DE,fr-FR", "--out", outDir)
	if err != nil {
		t.Fatalf("translate command failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one provider call per language, got %d", calls.Load())
	}

	for _, lang := range []string{"de-DE", "fr-FR"} {
		path := filepath.Join(outDir, "lecture."+lang+".vtt")
		if !strings.Contains(out, "Wrote "+path) {
			t.Fatalf("output does not mention %s:\n%s", path, out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		doc, err := vtt.Parse(data)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		if len(doc.Cues) != 2 || doc.Cues[0].Text() != "T1" || doc.Cues[1].Timing != "00:00:03.500 --> 00:00:06.000" {
			t.Fatalf("unexpected cues in %s: %#v", path, doc.Cues)
		}
	}
}

func TestTranslateCommandZip(t *testing.T) {
	srv, _ := fakeOpenAI(t)
	setTestEnv(t, srv.URL)

	dir := t.TempDir()
	infile := filepath.Join(dir, "lecture.vtt")
	if err := os.WriteFile(infile, []byte(lectureVTT), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if _, err := run(t, "translate", infile, "--langs", "ja-JP", "--zip"); err != nil {
		t.Fatalf("translate command failed: %v", err)
	}
	zr, err := zip.OpenReader(filepath.Join(dir, "translations.zip"))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "lecture.ja-JP.vtt" {
		t.Fatalf("unexpected archive entries %#v", zr.File)
	}
}

func TestTranslateCommandRejectsBadInput(t *testing.T) {
	srv, calls := fakeOpenAI(t)
	setTestEnv(t, srv.URL)

	dir := t.TempDir()
	infile := filepath.Join(dir, "broken.vtt")
	if err := os.WriteFile(infile, []byte("not a subtitle file"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if _, err := run(t, "translate", infile); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := run(t, "translate", filepath.Join(dir, "missing.vtt")); err == nil {
		t.Fatal("expected read error")
	}
	if calls.Load() != 0 {
		t.Fatalf("provider called %d times", calls.Load())
	}
}

func TestTokenCommand(t *testing.T) {
	setTestEnv(t, "")

	out, err := run(t, "token", "--ttl", "1h", "--subject", "ci")
	if err != nil {
		t.Fatalf("token command failed: %v", err)
	}
	claims, err := auth.NewJWTService("cli-test-bearer-secret").ValidateToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.Subject != "ci" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}

	t.Setenv("API_BEARER", "")
	if _, err := run(t, "token"); err == nil {
		t.Fatal("expected error without API_BEARER")
	}
}

func TestEnvFlagLoadsFile(t *testing.T) {
	t.Setenv(envFileOverride, "")
	t.Setenv("API_BEARER", "")
	os.Unsetenv("API_BEARER")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("API_BEARER=from-env-file-secret\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("API_BEARER") })

	out, err := run(t, "--env", path, "token")
	if err != nil {
		t.Fatalf("token command failed: %v", err)
	}
	if _, err := auth.NewJWTService("from-env-file-secret").ValidateToken(strings.TrimSpace(out)); err != nil {
		t.Fatalf("token not signed with the env file secret: %v", err)
	}

	if _, err := run(t, "--env", filepath.Join(t.TempDir(), "missing.env"), "token"); err == nil {
		t.Fatal("expected an explicit missing env file to fail")
	}
}

func TestNewHandlerServesHealth(t *testing.T) {
	cfg := &config.Config{
		Port: 8080, MaxUploadBytes: 1 << 20, RatePerMinute: 10, Wrap: 42,
		BatchSize: 40, MaxParallel: 1, BatchParallel: 1, RetryAttempts: 1,
		ProviderTimeout: time.Second, Engine: "openai", OpenAIAPIKey: "sk-x",
		APIBearer: "0123456789abcdef", CORSOrigins: "*",
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, err := newHandler(ctx, cfg, "test", zerolog.Nop())
	if err != nil {
		t.Fatalf("newHandler returned error: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/translate-vtt", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	cfg.DefaultLangs = "xx_yy!"
	if _, err := newHandler(ctx, cfg, "test", zerolog.Nop()); err == nil {
		t.Fatal("expected invalid DEFAULT_LANGS to fail")
	}
}

func TestLanguagesCommand(t *testing.T) {
	t.Setenv(envFileOverride, "")
	t.Setenv("DEFAULT_LANGS", "")

	out, err := run(t, "languages", "zh-hant", "de-de", "de-DE")
	if err != nil {
		t.Fatalf("languages command failed: %v", err)
	}
	if !strings.Contains(out, "zh-Hant") || !strings.Contains(out, "German (Germany)") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if strings.Count(out, "de-DE") != 1 {
		t.Fatalf("expected duplicates to collapse:\n%s", out)
	}

	out, err = run(t, "languages")
	if err != nil {
		t.Fatalf("languages command failed: %v", err)
	}
	if !strings.Contains(out, "ko-KR") || !strings.Contains(out, "sv-SE") {
		t.Fatalf("expected default set:\n%s", out)
	}

	if _, err := run(t, "languages", "!!"); err == nil {
		t.Fatal("expected invalid tag to fail")
	}
}
