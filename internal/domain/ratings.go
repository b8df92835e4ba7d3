package domain

import "strings"

// Reaction is one of the five emoji a reader can rate a post with.
type Reaction string

// Reactions, from worst to best.
const (
	ReactionAngry    Reaction = "😠"
	ReactionConfused Reaction = "😕"
	ReactionThinking Reaction = "🤔"
	ReactionHappy    Reaction = "😊"
	ReactionLove     Reaction = "😍"
)

// Reactions lists every rating bucket in display order.
var Reactions = []Reaction{ReactionAngry, ReactionConfused, ReactionThinking, ReactionHappy, ReactionLove}

// Valid reports whether r is one of the five buckets.
func (r Reaction) Valid() bool {
	for _, known := range Reactions {
		if r == known {
			return true
		}
	}
	return false
}

// Ratings is the per-reaction histogram of a post.
type Ratings map[Reaction]int

// NewRatings returns a histogram with every bucket at zero.
func NewRatings() Ratings {
	r := make(Ratings, len(Reactions))
	for _, reaction := range Reactions {
		r[reaction] = 0
	}
	return r
}

// Normalize returns a histogram holding exactly the five buckets,
// dropping unknown keys and clamping negative counts to zero.
func (r Ratings) Normalize() Ratings {
	out := NewRatings()
	for _, reaction := range Reactions {
		if n := r[reaction]; n > 0 {
			out[reaction] = n
		}
	}
	return out
}

// Total is the number of ratings across all buckets.
func (r Ratings) Total() int {
	total := 0
	for _, reaction := range Reactions {
		total += r[reaction]
	}
	return total
}

// Clone returns a copy of the histogram.
func (r Ratings) Clone() Ratings {
	if r == nil {
		return nil
	}
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
