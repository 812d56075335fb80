package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsControl(r) {
			continue
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeText(s string) string {
	return TrimAndNormalize(s)
}

func NormalizeLabel(label string) string {
	return Pipeline{TrimAndNormalize, strings.ToLower}.Apply(label)
}

// NormalizeID trims surrounding whitespace; identifiers are otherwise opaque.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
