package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vtt-translator/backend/internal/api/handlers"
	"github.com/vtt-translator/backend/internal/api/middleware"
	"github.com/vtt-translator/backend/internal/subtitle/translate"
)

// Options wires the router's collaborators
type Options struct {
	Version     string
	PublicURL   string
	CORSOrigins []string
	// Verifier guards /translate-vtt; nil disables authentication
	Verifier    middleware.Verifier
	RateLimiter *middleware.RateLimiter
	MaxUpload   int64
	Secrets     []string
	Defaults    handlers.TranslateDefaults
	Logger      zerolog.Logger
}

func NewRouter(pipeline *translate.Pipeline, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(middleware.CORSHandler(opts.CORSOrigins)))

	langs := make([]string, 0, len(opts.Defaults.Languages))
	for _, tag := range opts.Defaults.Languages {
		langs = append(langs, tag.String())
	}

	healthHandler := handlers.NewHealthHandler(opts.Version)
	optionsHandler := handlers.NewOptionsHandler(pipeline.Registry(), opts.Defaults)
	openAPIHandler := handlers.NewOpenAPIHandler(handlers.OpenAPIInfo{
		Version:       opts.Version,
		ServerURL:     opts.PublicURL,
		DefaultLangs:  strings.Join(langs, " "),
		DefaultModel:  opts.Defaults.Model,
		DefaultWrap:   opts.Defaults.Wrap,
		DefaultEngine: pipeline.Registry().Default(),
		Engines:       pipeline.Registry().Names(),
		Presets:       translate.Presets(),
	})
	translateHandler := handlers.NewTranslateHandler(pipeline, opts.Defaults, opts.MaxUpload, opts.Secrets, opts.Logger)

	// Public routes
	r.Get("/healthz", healthHandler.Health)
	r.Get("/openapi.yaml", openAPIHandler.YAML)
	r.Get("/openapi.json", openAPIHandler.JSON)
	r.Get("/options", optionsHandler.ListOptions)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}
		r.Use(middleware.AuthMiddleware(opts.Verifier, opts.Logger))
		r.Use(middleware.MaxBodySize(opts.MaxUpload + multipartOverhead))

		r.Post("/translate-vtt", translateHandler.TranslateVTT)
	})

	return r
}

// multipartOverhead covers boundaries and the other form fields
const multipartOverhead = 64 << 10
