package translate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// SplitLanguages splits a space or comma separated list of tags
func SplitLanguages(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ParseLanguages canonicalizes tags and drops duplicates, keeping first-seen order
func ParseLanguages(raw []string) ([]language.Tag, error) {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]language.Tag, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tag, err := language.Parse(item)
		if err != nil || tag == language.Und {
			return nil, fmt.Errorf("invalid language tag %q", item)
		}
		if _, conf := tag.Base(); conf != language.Exact {
			return nil, fmt.Errorf("language tag %q does not name a language", item)
		}
		key := tag.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("no target languages given")
	}
	return tags, nil
}

// DisplayName returns the English name of a tag, e.g. "Swedish (Sweden)"
func DisplayName(tag language.Tag) string {
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
