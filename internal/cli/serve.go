package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vtt-translator/backend/internal/api"
	"github.com/vtt-translator/backend/internal/api/handlers"
	"github.com/vtt-translator/backend/internal/api/middleware"
	"github.com/vtt-translator/backend/internal/auth"
	"github.com/vtt-translator/backend/internal/config"
	"github.com/vtt-translator/backend/internal/logging"
	"github.com/vtt-translator/backend/internal/subtitle/translate"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(true)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			logger, err := logging.New(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return err
			}
			if ctx.envFile != "" {
				logger.Info().Str("path", ctx.envFile).Msg("loaded environment file")
			}
			return runServer(cmd.Context(), cfg, ctx.version, logger)
		},
	}
}

func newHandler(ctx context.Context, cfg *config.Config, version string, logger zerolog.Logger) (http.Handler, error) {
	langs, err := translate.ParseLanguages(cfg.DefaultLanguageList())
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_LANGS: %w", err)
	}

	var verifier middleware.Verifier
	if !cfg.AuthDisabled {
		verifier = auth.NewBearerVerifier(strings.TrimSpace(cfg.APIBearer))
	}

	pipeline := newPipeline(cfg, logger)
	return api.NewRouter(pipeline, api.Options{
		Version:     version,
		PublicURL:   cfg.PublicURL,
		CORSOrigins: cfg.CORSOriginsList(),
		Verifier:    verifier,
		RateLimiter: middleware.NewRateLimiter(ctx, cfg.RatePerMinute, time.Minute),
		MaxUpload:   cfg.MaxUploadBytes,
		Secrets:     cfg.Secrets(),
		Defaults: handlers.TranslateDefaults{
			Languages: langs,
			Model:     cfg.Model,
			Wrap:      cfg.Wrap,
		},
		Logger: logger,
	}), nil
}

func runServer(ctx context.Context, cfg *config.Config, version string, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler, err := newHandler(ctx, cfg, version, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
		// no write deadline: long translations hold the response open
	}

	if cfg.AuthDisabled {
		logger.Warn().Msg("bearer authentication is disabled")
	}
	logger.Info().
		Str("addr", srv.Addr).
		Str("engine", cfg.EngineName()).
		Str("model", cfg.Model).
		Msg("starting server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
