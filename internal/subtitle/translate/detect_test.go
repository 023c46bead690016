package translate

import (
	"strings"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	texts := []string{
		"Good morning everyone and welcome to the quarterly meeting.",
		"",
		"Today we will talk about the results of the last three months.",
		"Thank you all for being here with us.",
	}
	if got := DetectLanguage(texts); got != "English" {
		t.Fatalf("DetectLanguage = %q, want English", got)
	}
}

func TestDetectLanguageNeedsEnoughLetters(t *testing.T) {
	cases := map[string][]string{
		"too short": {"Hi", "ok", "123 !!"},
		"empty":     {"", "  ", "\n"},
		"none":      nil,
	}
	for name, texts := range cases {
		t.Run(name, func(t *testing.T) {
			if got := DetectLanguage(texts); got != "" {
				t.Fatalf("DetectLanguage = %q, want empty", got)
			}
		})
	}
}

func TestBuildSampleIsCapped(t *testing.T) {
	line := strings.Repeat("word ", 20)
	texts := make([]string, 500)
	for i := range texts {
		texts[i] = line
	}
	sample := buildSample(texts)
	if len(sample) < detectSampleBytes || len(sample) > detectSampleBytes+len(line)+1 {
		t.Fatalf("sample length %d outside the cap", len(sample))
	}
	if got := buildSample([]string{" a ", "", "b"}); got != "a b" {
		t.Fatalf("unexpected sample %q", got)
	}
}
