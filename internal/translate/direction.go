package translate

import (
	"fmt"
	"strings"
)

// Direction is a source/target language pair.
type Direction string

const (
	GermanToEnglish Direction = "de-en"
	EnglishToGerman Direction = "en-de"
)

// ParseDirection accepts "de-en", "en-de" and the "de|en" langpair form.
func ParseDirection(s string) (Direction, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "|", "-")
	switch Direction(norm) {
	case GermanToEnglish, EnglishToGerman:
		return Direction(norm), nil
	}
	return "", fmt.Errorf("unknown direction %q (want de-en or en-de)", s)
}

// Swap returns the opposite direction.
func (d Direction) Swap() Direction {
	if d == EnglishToGerman {
		return GermanToEnglish
	}
	return EnglishToGerman
}

// Source returns the source language code.
func (d Direction) Source() string {
	if d == EnglishToGerman {
		return "en"
	}
	return "de"
}

// Target returns the target language code.
func (d Direction) Target() string {
	if d == EnglishToGerman {
		return "de"
	}
	return "en"
}

// LangPair returns the pair in MyMemory's "src|dst" form.
func (d Direction) LangPair() string {
	return d.Source() + "|" + d.Target()
}

// Label is the short display form, e.g. "DE -> EN".
func (d Direction) Label() string {
	return strings.ToUpper(d.Source()) + " -> " + strings.ToUpper(d.Target())
}

func languageName(code string) string {
	switch code {
	case "de":
		return "German"
	case "en":
		return "English"
	}
	return code
}
