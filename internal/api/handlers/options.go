package handlers

import (
	"net/http"

	"github.com/vtt-translator/backend/internal/subtitle/translate"
)

// OptionsHandler describes the choices a caller can make on /translate-vtt
type OptionsHandler struct {
	registry  *translate.Registry
	defaults  TranslateDefaults
	languages []string
}

func NewOptionsHandler(registry *translate.Registry, defaults TranslateDefaults) *OptionsHandler {
	langs := make([]string, 0, len(defaults.Languages))
	for _, tag := range defaults.Languages {
		langs = append(langs, tag.String())
	}
	return &OptionsHandler{registry: registry, defaults: defaults, languages: langs}
}

// ListOptions returns engines, presets and request defaults
func (h *OptionsHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"engines":        h.registry.Names(),
		"default_engine": h.registry.Default(),
		"presets":        translate.Presets(),
		"default_preset": translate.DefaultPreset,
		"default_langs":  h.languages,
		"default_wrap":   h.defaults.Wrap,
		"default_model":  h.defaults.Model,
	}, http.StatusOK)
}
