// ABOUTME: Response styler: cosmetic openers and emoji added to outgoing replies
// ABOUTME: Randomness is injected through RandomSource so tests can force outcomes
package styler

import "math/rand/v2"

const (
	// OpenerProbability is the chance a filler opener is prepended
	OpenerProbability = 0.2
	// EmojiProbability is the chance an emoji is appended
	EmojiProbability = 0.4
)

var (
	// Openers are the filler words a reply may start with
	Openers = []string{"Hmm", "Okay", "Alright,"}
	// Emojis are the glyphs a reply may end with
	Emojis = []string{"💊", "👍", "😊"}
)

// RandomSource supplies the stochastic decisions made by a Styler
type RandomSource interface {
	// Chance reports true with probability p
	Chance(p float64) bool
	// Choose returns an index in [0, n)
	Choose(n int) int
}

// Styler decorates assistant replies before display
type Styler interface {
	Style(text string) string
}

// RandomStyler applies the opener and emoji decisions
type RandomStyler struct {
	src RandomSource
}

// NewStyler creates a styler backed by math/rand/v2
func NewStyler() *RandomStyler {
	return NewStylerWithSource(mathRand{})
}

// NewStylerWithSource creates a styler with an injected random source
func NewStylerWithSource(src RandomSource) *RandomStyler {
	return &RandomStyler{src: src}
}

// Style returns text with an optional opener and an optional trailing emoji.
// The opener decision is made before the emoji decision.
func (s *RandomStyler) Style(text string) string {
	if s.src.Chance(OpenerProbability) {
		text = Openers[s.src.Choose(len(Openers))] + " " + text
	}
	if s.src.Chance(EmojiProbability) {
		text += " " + Emojis[s.src.Choose(len(Emojis))]
	}
	return text
}

// Plain leaves replies untouched
type Plain struct{}

// Style returns text unchanged
func (Plain) Style(text string) string { return text }

type mathRand struct{}

func (mathRand) Chance(p float64) bool { return rand.Float64() < p }

func (mathRand) Choose(n int) int { return rand.IntN(n) }
