package cli

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vtt-translator/backend/internal/config"
	"github.com/vtt-translator/backend/internal/subtitle/translate"
)

// newPipeline registers every engine that has credentials and shares one
// outbound rate limiter between them
func newPipeline(cfg *config.Config, logger zerolog.Logger) *translate.Pipeline {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	}

	base := translate.ClientConfig{
		Timeout:       cfg.ProviderTimeout,
		RetryAttempts: cfg.RetryAttempts,
		Limiter:       limiter,
		Logger:        logger,
	}

	var engines []translate.Translator
	if key := cfg.APIKeyFor(config.EngineOpenAI); key != "" {
		c := base
		c.APIKey, c.BaseURL, c.Model = key, cfg.OpenAIBaseURL, cfg.Model
		engines = append(engines, translate.NewOpenAITranslator(c))
	}
	if key := cfg.APIKeyFor(config.EngineGemini); key != "" {
		c := base
		c.APIKey, c.BaseURL, c.Model = key, cfg.GeminiBaseURL, cfg.GeminiModel
		engines = append(engines, translate.NewGeminiTranslator(c))
	}
	if key := cfg.APIKeyFor(config.EngineDeepL); key != "" {
		c := base
		c.APIKey, c.BaseURL = key, cfg.DeepLBaseURL
		engines = append(engines, translate.NewDeepLTranslator(c))
	}

	registry := translate.NewRegistry(cfg.EngineName(), engines...)
	return translate.NewPipeline(registry, translate.PipelineConfig{
		BatchSize:     cfg.BatchSize,
		BatchParallel: cfg.BatchParallel,
		MaxParallel:   cfg.MaxParallel,
		Detect:        translate.DetectLanguage,
		Logger:        logger,
	})
}
