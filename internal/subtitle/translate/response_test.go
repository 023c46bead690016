package translate

import (
	"errors"
	"testing"
)

func TestDecodeTranslationsShapes(t *testing.T) {
	cases := map[string]string{
		"object":      `{"translations":["a","b"]}`,
		"bare array":  `["a","b"]`,
		"other field": `{"items":["a","b"]}`,
		"code fence":  "```json\n{\"translations\":[\"a\",\"b\"]}\n```",
		"prose":       `Here you go: ["a","b"] hope that helps`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := decodeTranslations(content, 2)
			if err != nil {
				t.Fatalf("decodeTranslations returned error: %v", err)
			}
			if got[0] != "a" || got[1] != "b" {
				t.Fatalf("unexpected result %#v", got)
			}
		})
	}
}

func TestDecodeTranslationsASSLineBreak(t *testing.T) {
	got, err := decodeTranslations(`{"translations":["one\Ntwo"]}`, 1)
	if err != nil {
		t.Fatalf("decodeTranslations returned error: %v", err)
	}
	if got[0] != "one\ntwo" {
		t.Fatalf("expected line break, got %q", got[0])
	}
}

func TestDecodeTranslationsKeepsEscapedBackslash(t *testing.T) {
	got, err := decodeTranslations(`{"translations":["C:\\New"]}`, 1)
	if err != nil {
		t.Fatalf("decodeTranslations returned error: %v", err)
	}
	if got[0] != `C:\New` {
		t.Fatalf("expected backslash kept, got %q", got[0])
	}
}

func TestDecodeTranslationsRejects(t *testing.T) {
	cases := map[string]string{
		"not json":     "sorry, I cannot do that",
		"wrong count":  `{"translations":["a"]}`,
		"non strings":  `{"translations":[1,2]}`,
		"two arrays":   `{"x":["a","b"],"y":["c","d"]}`,
		"wrong object": `{"text":"a"}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeTranslations(content, 2)
			if !errors.Is(err, ErrCountMismatch) {
				t.Fatalf("expected ErrCountMismatch, got %v", err)
			}
		})
	}
}
