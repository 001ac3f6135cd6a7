package similarity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultThreshold is the minimum Jaccard score for a stored answer to be reused
const DefaultThreshold = 0.4

// TokenSet is a set of normalized keywords
type TokenSet map[string]struct{}

// Tokenize lower-cases text, drops every character outside [a-z0-9] and
// whitespace, and splits the rest on whitespace.
func Tokenize(text string) TokenSet {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case isSpace(r):
			return r
		}
		return -1
	}, strings.ToLower(text))

	tokens := make(TokenSet)
	for _, f := range strings.FieldsFunc(normalized, isSpace) {
		tokens[f] = struct{}{}
	}
	return tokens
}

// isSpace also treats the ASCII information separators U+001C..U+001F as
// whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// String renders the set as sorted space separated tokens. Tokenizing the
// rendering yields the same set.
func (s TokenSet) String() string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for w := range small {
		if _, ok := large[w]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Scorer decides whether two questions are close enough to share an answer
type Scorer struct {
	threshold float64
}

// New creates a Scorer. threshold must be within [0, 1].
func New(threshold float64) (*Scorer, error) {
	if threshold < 0 || threshold > 1 || threshold != threshold {
		return nil, goerr.New("similarity threshold must be within [0, 1]", goerr.V("threshold", threshold))
	}
	return &Scorer{threshold: threshold}, nil
}

// Default returns a Scorer with DefaultThreshold
func Default() *Scorer {
	return &Scorer{threshold: DefaultThreshold}
}

func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score returns the Jaccard score of the token sets of q1 and q2
func (s *Scorer) Score(q1, q2 string) float64 {
	return Jaccard(Tokenize(q1), Tokenize(q2))
}

// IsSimilarEnough reports whether Score(q1, q2) reaches the threshold
func (s *Scorer) IsSimilarEnough(q1, q2 string) bool {
	return s.Score(q1, q2) >= s.threshold
}
