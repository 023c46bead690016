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
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAITranslator translates subtitles using the OpenAI Chat Completions API
type OpenAITranslator struct {
	baseURL string
	model   string
	t       *transport
}

func NewOpenAITranslator(cfg ClientConfig) *OpenAITranslator {
	o := &OpenAITranslator{
		baseURL: strings.TrimSpace(cfg.BaseURL),
		model:   strings.TrimSpace(cfg.Model),
		t:       newTransport("openai", cfg),
	}
	if o.baseURL == "" {
		o.baseURL = openAIChatURL
	}
	if o.model == "" {
		o.model = defaultOpenAIModel
	}
	return o
}

func (o *OpenAITranslator) Name() string {
	return "openai"
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAITranslator) Translate(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if o.t.apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	model := o.model
	if m := strings.TrimSpace(opts.Model); m != "" {
		model = m
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(opts)},
			{Role: "user", Content: UserPrompt(texts)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("encode openai request: %w", err)
	}

	body, err := o.t.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.t.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Engine: o.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Engine: o.Name(), Err: fmt.Errorf("empty response")}
	}
	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, &ProviderError{Engine: o.Name(), Err: fmt.Errorf("empty content (finish_reason=%q, refusal=%q)", choice.FinishReason, choice.Message.Refusal)}
	}

	o.t.logger.Debug().Int("cues", len(texts)).Str("model", model).Str("target", opts.TargetLang).Msg("batch translated")
	return decodeTranslations(choice.Message.Content, len(texts))
}
