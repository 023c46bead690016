package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	geminiAPIBase      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel = "gemini-2.0-flash"
)

// GeminiTranslator translates subtitles using the Google Gemini API
type GeminiTranslator struct {
	baseURL string
	model   string
	t       *transport
}

func NewGeminiTranslator(cfg ClientConfig) *GeminiTranslator {
	g := &GeminiTranslator{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:   strings.TrimSpace(cfg.Model),
		t:       newTransport("gemini", cfg),
	}
	if g.baseURL == "" {
		g.baseURL = geminiAPIBase
	}
	if g.model == "" {
		g.model = defaultGeminiModel
	}
	return g
}

func (g *GeminiTranslator) Name() string {
	return "gemini"
}

func (g *GeminiTranslator) Translate(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if g.t.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	model := g.model
	if m := strings.TrimSpace(opts.Model); m != "" {
		model = m
	}

	reqBody := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": SystemPrompt(opts)}},
		},
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": UserPrompt(texts)}}},
		},
		"generationConfig": map[string]any{
			"temperature":      0,
			"responseMimeType": "application/json",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
	body, err := g.t.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.t.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, &ProviderError{Engine: g.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		if reason := geminiResp.PromptFeedback.BlockReason; reason != "" {
			return nil, &ProviderError{Engine: g.Name(), Err: fmt.Errorf("blocked: %s", reason)}
		}
		return nil, &ProviderError{Engine: g.Name(), Err: fmt.Errorf("empty response")}
	}
	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		g.t.logger.Warn().Str("finish_reason", fr).Msg("gemini finished early")
	}

	return decodeTranslations(geminiResp.Candidates[0].Content.Parts[0].Text, len(texts))
}
