// Package moderation masks configured words in chat messages.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator replaces every occurrence of a censored word with a mask rune. Matching is
// case-insensitive, ignores punctuation and spacing, and folds common leet substitutions.
// A nil *Moderator passes text through unchanged.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

// New builds a Moderator. With no words it returns nil.
func New(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if p := normalizeRunes([]rune(w)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, mask: mask}, nil
}

// Censor returns text with censored spans masked, keeping original spacing.
func (m *Moderator) Censor(text string) string {
	if m == nil {
		return text
	}
	norm, origIdx := normalize(text)
	if len(norm) == 0 {
		return text
	}

	terms := m.matcher.MultiPatternSearch(norm, false)
	if len(terms) == 0 {
		return text
	}

	out := []rune(text)
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			out[i] = m.mask
		}
	}
	return string(out)
}

// normalize drops noise runes and returns the searchable text with, for each kept rune,
// its index in the original.
func normalize(text string) ([]rune, []int) {
	orig := []rune(text)
	norm := make([]rune, 0, len(orig))
	idx := make([]int, 0, len(orig))
	for i, r := range orig {
		clean := fold(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		idx = append(idx, i)
	}
	return norm, idx
}

func normalizeRunes(in []rune) []rune {
	out := make([]rune, 0, len(in))
	for _, r := range in {
		clean := fold(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

func fold(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
