package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

const deeplAPIURL = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator translates subtitles using the DeepL API. Model and wrap
// options are ignored; presets map to DeepL formality.
type DeepLTranslator struct {
	baseURL string
	t       *transport
}

func NewDeepLTranslator(cfg ClientConfig) *DeepLTranslator {
	d := &DeepLTranslator{
		baseURL: strings.TrimSpace(cfg.BaseURL),
		t:       newTransport("deepl", cfg),
	}
	if d.baseURL == "" {
		d.baseURL = deeplAPIURL
	}
	return d
}

func (d *DeepLTranslator) Name() string {
	return "deepl"
}

func (d *DeepLTranslator) Translate(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if d.t.apiKey == "" {
		return nil, fmt.Errorf("deepl: %w", ErrNotConfigured)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	form := url.Values{}
	for _, text := range texts {
		form.Add("text", text)
	}
	form.Set("target_lang", deeplLangCode(opts.TargetLang))
	form.Set("preserve_formatting", "1")

	switch opts.Preset {
	case "documentary", "corporate":
		form.Set("formality", "prefer_more")
	case "movie":
		form.Set("formality", "prefer_less")
	}
	encoded := form.Encode()

	body, err := d.t.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "DeepL-Auth-Key "+d.t.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return nil, &ProviderError{Engine: d.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(deeplResp.Translations) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d translations, got %d", ErrCountMismatch, len(texts), len(deeplResp.Translations))
	}

	out := make([]string, len(texts))
	for i, tr := range deeplResp.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// deeplLangCode converts a BCP 47 tag to a DeepL target_lang value
func deeplLangCode(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToUpper(tag)
	}
	base, _ := t.Base()
	script, _ := t.Script()
	region, _ := t.Region()

	switch base.String() {
	case "zh":
		if script.String() == "Hant" || region.String() == "TW" || region.String() == "HK" {
			return "ZH-HANT"
		}
		return "ZH-HANS"
	case "en":
		if region.String() == "GB" {
			return "EN-GB"
		}
		return "EN-US"
	case "pt":
		if region.String() == "PT" {
			return "PT-PT"
		}
		return "PT-BR"
	case "no":
		return "NB"
	}
	return strings.ToUpper(base.String())
}
