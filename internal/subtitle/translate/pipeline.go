package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/vtt-translator/backend/internal/metrics"
	"github.com/vtt-translator/backend/internal/subtitle/vtt"
)

const (
	defaultBatchSize     = 40
	defaultBatchParallel = 2
	defaultMaxParallel   = 4
)

// PipelineConfig tunes batching and fan-out
type PipelineConfig struct {
	BatchSize     int
	BatchParallel int
	MaxParallel   int
	// Detect names the source language of the cue texts; nil disables detection
	Detect func(texts []string) string
	Logger zerolog.Logger
}

// Pipeline translates parsed documents into target languages
type Pipeline struct {
	registry      *Registry
	batchSize     int
	batchParallel int
	maxParallel   int
	detect        func([]string) string
	logger        zerolog.Logger
}

// Request describes one translation call covering every target language
type Request struct {
	Engine    string
	Model     string
	Preset    string
	Wrap      int
	Languages []language.Tag
}

// Result is one translated document
type Result struct {
	Language language.Tag
	Document *vtt.Document
}

func NewPipeline(registry *Registry, cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		registry:      registry,
		batchSize:     cfg.BatchSize,
		batchParallel: cfg.BatchParallel,
		maxParallel:   cfg.MaxParallel,
		detect:        cfg.Detect,
		logger:        cfg.Logger,
	}
	if p.batchSize <= 0 {
		p.batchSize = defaultBatchSize
	}
	if p.batchParallel <= 0 {
		p.batchParallel = defaultBatchParallel
	}
	if p.maxParallel <= 0 {
		p.maxParallel = defaultMaxParallel
	}
	return p
}

// Registry returns the engines the pipeline can use
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// TranslateAll translates doc into every requested language concurrently.
// Results keep the order of req.Languages. The first failing language (in
// request order) determines the returned error.
func (p *Pipeline) TranslateAll(ctx context.Context, doc *vtt.Document, req Request) ([]Result, error) {
	engine, err := p.registry.Get(req.Engine)
	if err != nil {
		return nil, err
	}
	if len(req.Languages) == 0 {
		return nil, fmt.Errorf("no target languages given")
	}

	source := p.sourceLanguage(doc)
	start := time.Now()
	p.logger.Info().
		Str("engine", engine.Name()).
		Int("cues", len(doc.Cues)).
		Int("languages", len(req.Languages)).
		Str("source", source).
		Msg("translation started")

	results := make([]Result, len(req.Languages))
	errs := make([]error, len(req.Languages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, tag := range req.Languages {
		g.Go(func() error {
			out, err := p.translate(gctx, engine, doc, tag, source, req)
			if err != nil {
				metrics.TranslationsTotal.WithLabelValues(engine.Name(), languageLabel(tag), metrics.OutcomeError).Inc()
				errs[i] = fmt.Errorf("translate %s: %w", tag, err)
				return errs[i]
			}
			metrics.TranslationsTotal.WithLabelValues(engine.Name(), languageLabel(tag), metrics.OutcomeOK).Inc()
			results[i] = Result{Language: tag, Document: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Error().Err(err).Str("engine", engine.Name()).Msg("translation failed")
		return nil, firstError(ctx, errs, err)
	}

	p.logger.Info().
		Str("engine", engine.Name()).
		Int("languages", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("translation complete")
	return results, nil
}

// Translate translates doc into a single language
func (p *Pipeline) Translate(ctx context.Context, doc *vtt.Document, tag language.Tag, req Request) (*vtt.Document, error) {
	engine, err := p.registry.Get(req.Engine)
	if err != nil {
		return nil, err
	}
	return p.translate(ctx, engine, doc, tag, p.sourceLanguage(doc), req)
}

func (p *Pipeline) translate(ctx context.Context, engine Translator, doc *vtt.Document, tag language.Tag, source string, req Request) (*vtt.Document, error) {
	opts := Options{
		SourceLang: source,
		TargetLang: tag.String(),
		TargetName: DisplayName(tag),
		Model:      req.Model,
		Preset:     req.Preset,
		Wrap:       req.Wrap,
	}

	// Only cues with text are sent; positions map results back to cues
	var positions []int
	var texts []string
	for i, cue := range doc.Cues {
		text := strings.TrimSpace(cue.Text())
		if text == "" {
			continue
		}
		positions = append(positions, i)
		texts = append(texts, cue.Text())
	}

	translated := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.batchParallel)
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		g.Go(func() error {
			out, err := p.translateBatch(gctx, engine, texts[start:end], opts)
			if err != nil {
				return fmt.Errorf("batch %d: %w", start/p.batchSize+1, err)
			}
			copy(translated[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := doc.Clone()
	for k, idx := range positions {
		lines := cleanLines(translated[k])
		if len(lines) == 0 {
			p.logger.Warn().Str("target", opts.TargetLang).Int("cue", idx+1).Msg("empty translation, kept original text")
			continue
		}
		out.Cues[idx].Lines = lines
	}
	return out, nil
}

// translateBatch sends one batch; when the engine cannot keep the cue count it
// falls back to one call per cue
func (p *Pipeline) translateBatch(ctx context.Context, engine Translator, texts []string, opts Options) ([]string, error) {
	out, err := engine.Translate(ctx, texts, opts)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, ErrCountMismatch) || len(texts) == 1 {
		return nil, err
	}

	p.logger.Warn().Err(err).Str("engine", engine.Name()).Int("cues", len(texts)).Msg("batch reply unusable, translating cue by cue")
	out = make([]string, len(texts))
	for i, text := range texts {
		single, err := engine.Translate(ctx, []string{text}, opts)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", i+1, err)
		}
		out[i] = single[0]
	}
	return out, nil
}

func (p *Pipeline) sourceLanguage(doc *vtt.Document) string {
	if p.detect == nil {
		return ""
	}
	texts := make([]string, 0, len(doc.Cues))
	for _, cue := range doc.Cues {
		texts = append(texts, cue.Text())
	}
	return p.detect(texts)
}

// languageLabel is the metric label for tag: its base language, or "other"
// when the base is only guessed (und-US, private use)
func languageLabel(tag language.Tag) string {
	base, conf := tag.Base()
	if conf < language.High {
		return "other"
	}
	return base.String()
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// cleanLines splits a translated text into cue lines that keep the document
// parseable: no blank lines and no timing arrows
func cleanLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "-->", "→"))
	}
	return lines
}

// firstError prefers the earliest language that failed on its own over
// languages that were cancelled because another one failed
func firstError(parent context.Context, errs []error, fallback error) error {
	if parent.Err() != nil {
		return fallback
	}
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return fallback
}
