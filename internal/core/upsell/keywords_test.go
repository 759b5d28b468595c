package upsell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Frog Tumbler", []string{"frog", "tumbler"}},
		{"The Lily-Pad Mug for Tea", []string{"lily", "pad", "mug", "tea"}},
		{"  ", []string{}},
		{"20 oz Tumbler", []string{"20", "tumbler"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLongestTwo(t *testing.T) {
	assert.Equal(t, []string{"frog", "tumbler"}, longestTwo([]string{"frog", "tumbler"}))
	assert.Equal(t, []string{"sticker", "pack"}, longestTwo([]string{"sticker", "pack", "fun"}))
	// Ties keep the earliest words.
	assert.Equal(t, []string{"aaa", "bbb"}, longestTwo([]string{"aaa", "bbb", "ccc"}))
	assert.Equal(t, []string{"solo"}, longestTwo([]string{"solo"}))
	assert.Empty(t, longestTwo(nil))
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		cart []CartItem
		want []string
	}{
		{
			name: "drinkware hint",
			cart: []CartItem{{Name: "Frog Tumbler"}},
			want: []string{"frog", "tumbler", "accessory", "lid", "straw", "bundle", "gift", "sticker"},
		},
		{
			name: "apparel hint",
			cart: []CartItem{{Name: "Lily Pad T-Shirt"}},
			want: []string{"lily", "shirt", "sticker", "bundle", "accessory", "gift"},
		},
		{
			name: "wall art hint",
			cart: []CartItem{{Name: "Pond Canvas"}},
			want: []string{"pond", "canvas", "frame", "hanger", "stand", "accessory", "bundle", "gift"},
		},
		{
			name: "empty cart keeps generic terms",
			want: []string{"accessory", "bundle", "gift", "sticker"},
		},
		{
			name: "no hint",
			cart: []CartItem{{Name: "Ceramic Frog Figurine"}},
			want: []string{"ceramic", "figurine", "accessory", "bundle", "gift", "sticker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.cart, DefaultHints(), DefaultMaxKeywords))
		})
	}
}

func TestKeywords_capped_and_unique(t *testing.T) {
	cart := []CartItem{
		{Name: "Frog Tumbler"},
		{Name: "Toad Hoodie"},
		{Name: "Pond Poster"},
	}

	got := Keywords(cart, DefaultHints(), DefaultMaxKeywords)

	assert.Len(t, got, DefaultMaxKeywords)
	seen := map[string]bool{}
	for _, k := range got {
		assert.False(t, seen[k], "duplicate keyword %q", k)
		seen[k] = true
	}
}

func TestHint_Matches(t *testing.T) {
	drinkware := DefaultHints()[0]

	assert.True(t, drinkware.Matches("Frog Tumbler"))
	assert.True(t, drinkware.Matches("Coffee MUGS"))
	assert.True(t, drinkware.Matches("Lily Pad Wine Glass"))
	assert.False(t, drinkware.Matches("Frog Shirt"))
}

func TestHint_Validate(t *testing.T) {
	assert.NoError(t, Hint{Name: "ok", Patterns: []string{"mug*", "{cup,glass}"}}.Validate())

	err := Hint{Name: "bad", Patterns: []string{"[mug"}}.Validate()
	var pe *PatternError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "[mug", pe.Pattern)
}
