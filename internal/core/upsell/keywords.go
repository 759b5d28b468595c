package upsell

import (
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxKeywords caps the derived search terms.
const DefaultMaxKeywords = 8

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "for": {}, "with": {},
	"in": {}, "on": {}, "to": {}, "by": {}, "or": {}, "at": {}, "from": {},
	"my": {}, "your": {}, "set": {}, "size": {}, "oz": {}, "x": {},
}

// GenericKeywords are appended to every keyword set.
var GenericKeywords = []string{"accessory", "bundle", "gift", "sticker"}

// Hint injects extra keywords for item names matching one of its patterns.
// Patterns are doublestar globs matched against the lowercased name and
// against each of its words.
type Hint struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Keywords []string `yaml:"keywords"`
}

// Matches reports whether name or one of its words matches any pattern.
func (h Hint) Matches(name string) bool {
	candidates := append([]string{normalizeName(name)}, Tokenize(name)...)
	for _, p := range h.Patterns {
		for _, c := range candidates {
			if ok, err := doublestar.Match(p, c); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Validate checks every pattern compiles.
func (h Hint) Validate() error {
	for _, p := range h.Patterns {
		if !doublestar.ValidatePattern(p) {
			return &PatternError{Hint: h.Name, Pattern: p}
		}
	}
	return nil
}

// PatternError reports an invalid hint pattern.
type PatternError struct {
	Hint    string
	Pattern string
}

func (e *PatternError) Error() string {
	return "hint " + e.Hint + ": invalid pattern " + e.Pattern
}

// DefaultHints returns the built-in domain hints.
func DefaultHints() []Hint {
	return []Hint{
		{
			Name:     "drinkware",
			Patterns: []string{"tumbler*", "mug*", "cup*", "bottle*", "*glass", "*glasses"},
			Keywords: []string{"tumbler", "accessory", "lid", "straw"},
		},
		{
			Name:     "apparel",
			Patterns: []string{"*shirt", "*shirts", "tee", "tees", "hoodie*", "hat", "hats"},
			Keywords: []string{"shirt", "sticker", "bundle"},
		},
		{
			Name:     "wall-art",
			Patterns: []string{"*wall art*", "print", "prints", "canvas*", "poster*", "painting*"},
			Keywords: []string{"frame", "hanger", "stand"},
		},
	}
}

// normalizeName lowercases and replaces path separators so globs see one
// segment.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "/", " ")
}

// Tokenize splits s into lowercase alphanumeric words with stopwords removed.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// longestTwo returns the two longest words, earlier words winning ties.
func longestTwo(words []string) []string {
	first, second := -1, -1
	for i, w := range words {
		switch {
		case first == -1 || len(w) > len(words[first]):
			second = first
			first = i
		case second == -1 || len(w) > len(words[second]):
			second = i
		}
	}

	var out []string
	// Keep source order between the two picks.
	for i := range words {
		if i == first || i == second {
			out = append(out, words[i])
		}
	}
	return out
}

// Keywords derives the deduplicated search terms for cart, capped at max.
func Keywords(cart []CartItem, hints []Hint, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(words ...string) {
		for _, w := range words {
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}

	for _, item := range cart {
		add(longestTwo(Tokenize(item.Name))...)
		for _, h := range hints {
			if h.Matches(item.Name) {
				add(h.Keywords...)
			}
		}
	}
	add(GenericKeywords...)

	if len(out) > max {
		out = out[:max]
	}
	return out
}
