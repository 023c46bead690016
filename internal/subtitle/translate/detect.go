package translate

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

const detectSampleBytes = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectLanguage names the dominant language of the cue texts, e.g. "English".
// It returns "" when the sample is too small or detection is inconclusive.
func DetectLanguage(texts []string) string {
	sample := buildSample(texts)
	if sample == "" {
		return ""
	}

	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 6 {
		return ""
	}

	lang, ok := getDetector().DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	name := lang.String()
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

func buildSample(texts []string) string {
	var sb strings.Builder
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		if sb.Len() >= detectSampleBytes {
			break
		}
	}
	return sb.String()
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithLowAccuracyMode().
			Build()
	})
	return detector
}
