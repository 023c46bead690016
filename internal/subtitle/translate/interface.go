package translate

import "context"

// Options configures a single engine call
type Options struct {
	SourceLang string `json:"source_lang"` // display name, empty when unknown
	TargetLang string `json:"target_lang"` // BCP 47 tag, e.g. "zh-Hans"
	TargetName string `json:"target_name"` // English display name of TargetLang
	Model      string `json:"model"`       // empty selects the engine default
	Preset     string `json:"preset"`
	Wrap       int    `json:"wrap"`
}

// Translator is the common interface for all translation engines.
// Translate must return exactly one output per input text, in order, or an
// error wrapping ErrCountMismatch when the provider returned a different count.
type Translator interface {
	Translate(ctx context.Context, texts []string, opts Options) ([]string, error)
	Name() string
}
