package upsell

import "math"

// DefaultAccessoryWords mark a candidate as an add-on.
var DefaultAccessoryWords = []string{
	"lid", "straw", "sticker", "stickers", "decals", "bundle", "pack", "gift",
	"cleaner", "brush", "holder", "hanger", "cap", "strap", "filter", "case",
	"pouch",
}

// Weights are the tuning values of the heuristic score.
type Weights struct {
	Accessory      int      `yaml:"accessory"`
	NameOverlapCap int      `yaml:"name_overlap_cap"`
	CategoryCap    int      `yaml:"category_overlap_cap"`
	Budget         int      `yaml:"budget"`
	BudgetRatio    float64  `yaml:"budget_ratio"`
	AffinityCap    int      `yaml:"affinity_cap"`
	AccessoryWords []string `yaml:"accessory_words"`
}

func (w Weights) isZero() bool {
	return w.Accessory == 0 && w.NameOverlapCap == 0 && w.CategoryCap == 0 &&
		w.Budget == 0 && w.BudgetRatio == 0 && w.AffinityCap == 0 && w.AccessoryWords == nil
}

// DefaultWeights returns the standard tuning.
func DefaultWeights() Weights {
	return Weights{
		Accessory:      3,
		NameOverlapCap: 3,
		CategoryCap:    2,
		Budget:         1,
		BudgetRatio:    0.6,
		AffinityCap:    3,
		AccessoryWords: DefaultAccessoryWords,
	}
}

// Profile is the cart summary every candidate is scored against.
type Profile struct {
	NameTokens     map[string]struct{}
	CategoryTokens map[string]struct{}
	// Budget is the highest price earning the budget bonus; +Inf for an
	// empty cart, where the bonus never applies.
	Budget float64
	empty  bool
}

// NewProfile summarizes cart.
func NewProfile(cart []CartItem, ratio float64) Profile {
	p := Profile{
		NameTokens:     make(map[string]struct{}),
		CategoryTokens: make(map[string]struct{}),
		Budget:         math.Inf(1),
		empty:          len(cart) == 0,
	}

	var total float64
	for _, item := range cart {
		for _, t := range Tokenize(item.Name) {
			p.NameTokens[t] = struct{}{}
		}
		for _, t := range Tokenize(item.Category) {
			p.CategoryTokens[t] = struct{}{}
		}
		total += item.Price
	}
	if !p.empty {
		p.Budget = ratio * total / float64(len(cart))
	}
	return p
}

// Scorer computes the additive relevance score of a candidate.
type Scorer struct {
	w         Weights
	accessory map[string]struct{}
}

// NewScorer creates a scorer using w as given, so a zero weight turns its
// rule off. A nil accessory list keeps the default words.
func NewScorer(w Weights) Scorer {
	if w.AccessoryWords == nil {
		w.AccessoryWords = DefaultAccessoryWords
	}

	acc := make(map[string]struct{}, len(w.AccessoryWords))
	for _, word := range w.AccessoryWords {
		acc[word] = struct{}{}
	}
	return Scorer{w: w, accessory: acc}
}

// Weights returns the effective weights.
func (s Scorer) Weights() Weights { return s.w }

// Profile summarizes cart with the scorer's budget ratio.
func (s Scorer) Profile(cart []CartItem) Profile {
	return NewProfile(cart, s.w.BudgetRatio)
}

// Score returns the score of p for the cart profile and its click count.
func (s Scorer) Score(p Product, profile Profile, clicks int) int {
	score := 0
	nameTokens := unique(Tokenize(p.Name))

	for _, t := range nameTokens {
		if _, ok := s.accessory[t]; ok {
			score += s.w.Accessory
			break
		}
	}

	score += min(s.w.NameOverlapCap, overlap(nameTokens, profile.NameTokens))
	score += min(s.w.CategoryCap, overlap(unique(Tokenize(p.Category)), profile.CategoryTokens))

	if !profile.empty && p.Price > 0 && p.Price <= profile.Budget {
		score += s.w.Budget
	}

	if clicks > 0 {
		score += min(s.w.AffinityCap, clicks)
	}
	return score
}

func overlap(tokens []string, set map[string]struct{}) int {
	n := 0
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
