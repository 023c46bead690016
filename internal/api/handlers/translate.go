package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/vtt-translator/backend/internal/api/middleware"
	"github.com/vtt-translator/backend/internal/bundle"
	"github.com/vtt-translator/backend/internal/subtitle/translate"
	"github.com/vtt-translator/backend/internal/subtitle/vtt"
)

const (
	minWrap         = 10
	maxWrap         = 200
	maxModelName    = 100
	multipartMemory = 8 << 20
)

// TranslateDefaults fill in form fields the caller left out
type TranslateDefaults struct {
	Languages []language.Tag
	Model     string
	Wrap      int
}

type TranslateHandler struct {
	pipeline  *translate.Pipeline
	defaults  TranslateDefaults
	maxUpload int64
	secrets   []string
	logger    zerolog.Logger
}

func NewTranslateHandler(pipeline *translate.Pipeline, defaults TranslateDefaults, maxUpload int64, secrets []string, logger zerolog.Logger) *TranslateHandler {
	if defaults.Wrap == 0 {
		defaults.Wrap = 42
	}
	return &TranslateHandler{
		pipeline:  pipeline,
		defaults:  defaults,
		maxUpload: maxUpload,
		secrets:   secrets,
		logger:    logger,
	}
}

// TranslateVTT accepts a multipart upload and responds with a ZIP holding one
// translated .vtt per requested language
func (h *TranslateHandler) TranslateVTT(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			jsonError(w, "bad_input", fmt.Sprintf("upload exceeds %d bytes", h.maxUpload), http.StatusRequestEntityTooLarge)
			return
		}
		badInput(w, "expected a multipart/form-data body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		badInput(w, "file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".vtt") {
		badInput(w, "only .vtt files are supported")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		badInput(w, "could not read upload")
		return
	}
	if int64(len(data)) > h.maxUpload {
		jsonError(w, "bad_input", fmt.Sprintf("upload exceeds %d bytes", h.maxUpload), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := vtt.Parse(data)
	if err != nil {
		badInput(w, err.Error())
		return
	}

	req, msg := h.buildRequest(r)
	if msg != "" {
		badInput(w, msg)
		return
	}

	id := uuid.NewString()
	logCtx := h.logger.With().Str("translation_id", id).Str("file", header.Filename)
	if principal, ok := middleware.GetPrincipal(r); ok {
		logCtx = logCtx.Str("subject", principal.Subject).Str("auth", principal.Method)
	}
	logger := logCtx.Logger()
	start := time.Now()

	results, err := h.pipeline.TranslateAll(r.Context(), doc, req)
	if err != nil {
		h.translateError(w, r, logger, err)
		return
	}

	base := bundle.BaseName(header.Filename)
	files := make([]bundle.File, 0, len(results))
	for _, res := range results {
		files = append(files, bundle.File{
			Name: bundle.FileName(base, res.Language.String()),
			Data: vtt.Format(res.Document),
		})
	}

	var buf bytes.Buffer
	if err := bundle.Write(&buf, files, time.Now()); err != nil {
		logger.Error().Err(err).Msg("failed to build archive")
		jsonError(w, "internal_error", "failed to build archive", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int("cues", len(doc.Cues)).
		Int("languages", len(results)).
		Int("bytes", buf.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("translation finished")

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bundle.ArchiveName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Translation-Id", id)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// buildRequest reads the optional form fields; a non-empty message means bad input
func (h *TranslateHandler) buildRequest(r *http.Request) (translate.Request, string) {
	req := translate.Request{
		Model:     strings.TrimSpace(r.FormValue("model")),
		Wrap:      h.defaults.Wrap,
		Languages: h.defaults.Languages,
		Preset:    strings.ToLower(strings.TrimSpace(r.FormValue("preset"))),
		Engine:    strings.ToLower(strings.TrimSpace(r.FormValue("engine"))),
	}
	if len(req.Model) > maxModelName {
		return req, "model name is too long"
	}

	if raw := strings.TrimSpace(r.FormValue("wrap")); raw != "" {
		wrap, err := strconv.Atoi(raw)
		if err != nil || wrap < minWrap || wrap > maxWrap {
			return req, fmt.Sprintf("wrap must be an integer between %d and %d", minWrap, maxWrap)
		}
		req.Wrap = wrap
	}

	if raw := strings.TrimSpace(r.FormValue("langs")); raw != "" {
		tags, err := translate.ParseLanguages(translate.SplitLanguages(raw))
		if err != nil {
			return req, err.Error()
		}
		req.Languages = tags
	}
	if len(req.Languages) == 0 {
		return req, "no target languages given"
	}

	if req.Preset == "" {
		req.Preset = translate.DefaultPreset
	}
	if !translate.ValidPreset(req.Preset) {
		return req, fmt.Sprintf("unknown preset %q, expected one of %s", req.Preset, strings.Join(translate.Presets(), ", "))
	}
	if _, err := h.pipeline.Registry().Get(req.Engine); err != nil {
		return req, fmt.Sprintf("engine %q is not available, expected one of %s", req.Engine, strings.Join(h.pipeline.Registry().Names(), ", "))
	}
	return req, ""
}

func (h *TranslateHandler) translateError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	msg := translate.Redact(err.Error(), h.secrets...)

	if r.Context().Err() != nil {
		logger.Warn().Str("error", msg).Msg("client went away during translation")
		return
	}
	switch {
	case errors.Is(err, translate.ErrUnknownEngine):
		badInput(w, msg)
	case translate.IsUpstream(err):
		logger.Error().Str("error", msg).Msg("translation failed")
		jsonError(w, "translation_failed", msg, http.StatusBadGateway)
	default:
		logger.Error().Str("error", msg).Msg("unexpected translation error")
		jsonError(w, "internal_error", "internal error", http.StatusInternalServerError)
	}
}
