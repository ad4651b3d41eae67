package keyword

import (
	"strings"
	"sync"
)

// Match is a vocabulary hit for a single message token.
type Match struct {
	Token    string // token from the message
	Term     string // vocabulary term it matched
	Distance int    // edit distance between the two
}

// Vocabulary is a closed set of in-domain terms checked with typo tolerance.
// Multi-word terms and terms shorter than MinFuzzyLength only match exactly.
type Vocabulary struct {
	mu      sync.RWMutex
	terms   []string
	fuzzy   []string
	termSet map[string]struct{}
}

// NewVocabulary builds a vocabulary from terms. Terms are expected to be normalized.
func NewVocabulary(terms ...string) *Vocabulary {
	v := &Vocabulary{}
	v.Reset(terms)
	return v
}

// Reset replaces the vocabulary terms.
func (v *Vocabulary) Reset(terms []string) {
	set := make(map[string]struct{}, len(terms))
	all := make([]string, 0, len(terms))
	fuzzy := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := set[t]; dup {
			continue
		}
		set[t] = struct{}{}
		all = append(all, t)
		if !strings.Contains(t, " ") && len([]rune(t)) >= MinFuzzyLength {
			fuzzy = append(fuzzy, t)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.terms = all
	v.fuzzy = fuzzy
	v.termSet = set
}

// Terms returns a copy of the vocabulary terms in insertion order.
func (v *Vocabulary) Terms() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.terms...)
}

// ContainsExact reports whether text contains any term as a substring.
func (v *Vocabulary) ContainsExact(text string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, t := range v.terms {
		if strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}

// Suggest returns the closest fuzzy term for token within tolerance.
// Ties keep the earlier term.
func (v *Vocabulary) Suggest(token string) (Match, bool) {
	if len([]rune(token)) < MinFuzzyLength {
		return Match{}, false
	}

	v.mu.RLock()
	terms := v.fuzzy
	v.mu.RUnlock()

	best := Match{Distance: -1}
	for _, term := range terms {
		if !WithinTolerance(token, term) {
			continue
		}
		d := LevenshteinDistance(token, term)
		if best.Distance < 0 || d < best.Distance {
			best = Match{Token: token, Term: term, Distance: d}
		}
	}
	if best.Distance < 0 {
		return Match{}, false
	}
	return best, true
}

// MatchTokens returns the first token that is within tolerance of a fuzzy term.
func (v *Vocabulary) MatchTokens(tokens []string) (Match, bool) {
	for _, tok := range tokens {
		if m, ok := v.Suggest(tok); ok {
			return m, true
		}
	}
	return Match{}, false
}
