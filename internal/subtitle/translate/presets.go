package translate

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPreset is used when the caller does not pick one
const DefaultPreset = "general"

var presetGuidelines = map[string]string{
	"general": "",
	"corporate": "Additional guidelines for corporate and training videos:\n" +
		"- Use a clear, professional and friendly register\n" +
		"- Keep product names, brand names and acronyms untranslated\n" +
		"- Prefer the form of address customary in business communication for the target language\n" +
		"- Keep numbers, dates and units accurate",
	"movie": "Additional guidelines for movie/drama translation:\n" +
		"- Use natural conversational style appropriate for the genre\n" +
		"- Preserve cultural nuances and idioms with equivalent expressions\n" +
		"- Maintain formal/informal register matching the original dialogue",
	"documentary": "Additional guidelines for documentary translation:\n" +
		"- Use formal, precise language\n" +
		"- Preserve all technical terminology with accurate translations\n" +
		"- Maintain proper nouns, scientific names, and place names\n" +
		"- Keep numbers, dates, and measurements accurate",
}

// Presets lists the accepted preset names
func Presets() []string {
	names := make([]string, 0, len(presetGuidelines))
	for name := range presetGuidelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidPreset reports whether name is a known preset; empty is accepted
func ValidPreset(name string) bool {
	if name == "" {
		return true
	}
	_, ok := presetGuidelines[name]
	return ok
}

// SystemPrompt returns the translation instructions for an LLM engine
func SystemPrompt(opts Options) string {
	source := opts.SourceLang
	if source == "" {
		source = "the source language"
	}
	target := opts.TargetName
	if target == "" {
		target = opts.TargetLang
	}
	wrap := opts.Wrap
	if wrap <= 0 {
		wrap = 42
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional subtitle translator. Translate subtitles from %s into %s (%s).\n", source, target, opts.TargetLang)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Only translate the spoken text; never add cue numbers or timestamps.\n")
	sb.WriteString("- Keep line breaks and bracketed annotations (like [music]) intact.\n")
	fmt.Fprintf(&sb, "- Wrap lines at ~%d characters max.\n", wrap)
	sb.WriteString("- Keep translations concise and natural for subtitle display.\n")
	sb.WriteString("- Respond with JSON only.")

	if extra := presetGuidelines[opts.Preset]; extra != "" {
		sb.WriteString("\n\n")
		sb.WriteString(extra)
	}
	return sb.String()
}

// UserPrompt lists the cue texts to translate and the expected reply shape
func UserPrompt(texts []string) string {
	var sb strings.Builder
	sb.WriteString("Translate the following subtitle cues. Use \\n inside a string for a line break.\n\n")
	sb.WriteString("Input cues:\n")
	for i, text := range texts {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, strings.ReplaceAll(text, "\n", `\n`))
	}
	fmt.Fprintf(&sb, "\nReturn exactly %d translations, in the same order, as {\"translations\": [\"...\"]}.", len(texts))
	return sb.String()
}
