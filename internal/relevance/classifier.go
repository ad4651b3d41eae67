// Package relevance decides whether a message is about the business domain.
package relevance

import (
	"regexp"
	"strings"

	"github.com/hyperjump/asistan/internal/keyword"
	"github.com/hyperjump/asistan/internal/matcher"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/pkg/utils"
)

// Reason names the rule that accepted a message.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonClinicPattern Reason = "clinic_pattern"
	ReasonKeyword       Reason = "keyword"
	ReasonFuzzy         Reason = "fuzzy"
	ReasonPattern       Reason = "pattern"
	ReasonEntity        Reason = "entity"
	// ReasonFollowUp is set by callers that accept a follow-up cue in a grounded conversation.
	ReasonFollowUp Reason = "follow_up"
)

// Decision is the outcome of classifying one message.
type Decision struct {
	Relevant bool
	Greeting bool
	Reason   Reason
	Matched  string
}

var clinicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\p{L}+\s+(?:klinik|kliniği|dental|hastanesi|tıp merkezi)`),
	regexp.MustCompile(`\p{L}+\s+kliniğin(?:in)?`),
}

var questionPatterns = []*regexp.Regexp{
	// counting
	regexp.MustCompile(`(?:^|\s)(?:kaç|kaçtane)(?:\s|$|[.,?!])`),
	regexp.MustCompile(`sayısı|sayısını|toplam|adet`),
	// identifier references
	regexp.MustCompile(`(?:^|\s)[iı]d\s*[:=]?\s*\d+`),
	regexp.MustCompile(`#\d+`),
	regexp.MustCompile(`\d+\s*numaralı`),
	regexp.MustCompile(`^\d+(?:\s+(?:detay|bilgi)\p{L}*)?$`),
	// comparatives
	regexp.MustCompile(`(?:^|\s)en\s+(?:çok|az|fazla|yüksek|düşük)`),
	// first-person ownership
	regexp.MustCompile(`benim\s+\p{L}+l[ae]r[ıiuü]m`),
	regexp.MustCompile(`bana\s+ait`),
}

// Classifier gates messages before any retrieval runs.
type Classifier struct {
	vocab   *keyword.Vocabulary
	fuzzy   *keyword.Vocabulary
	matcher *matcher.Matcher
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithKeywords replaces the in-domain vocabulary.
func WithKeywords(terms []string) Option {
	return func(c *Classifier) {
		normalized := make([]string, 0, len(terms))
		for _, t := range terms {
			normalized = append(normalized, utils.Normalize(t))
		}
		c.vocab = keyword.NewVocabulary(normalized...)
		c.fuzzy = keyword.NewVocabulary(fuzzyTerms(normalized)...)
	}
}

// WithMatcher sets the entity matcher used for snapshot-aware classification.
func WithMatcher(m *matcher.Matcher) Option {
	return func(c *Classifier) {
		c.matcher = m
	}
}

// NewClassifier creates a Classifier with the default vocabulary.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		vocab:   keyword.NewVocabulary(DefaultKeywords...),
		fuzzy:   keyword.NewVocabulary(fuzzyTerms(DefaultKeywords)...),
		matcher: matcher.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBusinessRelated reports whether message is in-domain.
func (c *Classifier) IsBusinessRelated(message string) bool {
	return c.Classify(message, nil).Relevant
}

// Classify evaluates the relevance rules in order and reports the first that
// accepts the message. When snap is non-nil a message naming a known clinic,
// user, product, or campaign is also accepted.
func (c *Classifier) Classify(message string, snap *models.Snapshot) Decision {
	msg := utils.Normalize(message)
	if msg == "" {
		return Decision{}
	}
	if onlySmallTalk(msg) {
		return Decision{Greeting: true}
	}
	greeting := IsGreeting(msg)

	for _, re := range clinicPatterns {
		if m := re.FindString(msg); m != "" {
			return Decision{Relevant: true, Greeting: greeting, Reason: ReasonClinicPattern, Matched: m}
		}
	}

	if term, ok := c.containsKeyword(msg); ok {
		return Decision{Relevant: true, Greeting: greeting, Reason: ReasonKeyword, Matched: term}
	}

	if m, ok := c.fuzzy.MatchTokens(contentTokens(msg)); ok {
		return Decision{Relevant: true, Greeting: greeting, Reason: ReasonFuzzy, Matched: m.Term}
	}

	for _, re := range questionPatterns {
		if m := re.FindString(msg); m != "" {
			return Decision{Relevant: true, Greeting: greeting, Reason: ReasonPattern, Matched: m}
		}
	}

	if snap != nil && c.matcher != nil {
		if name, ok := c.namedEntity(snap, msg); ok {
			return Decision{Relevant: true, Greeting: greeting, Reason: ReasonEntity, Matched: name}
		}
	}

	return Decision{Greeting: greeting}
}

// containsKeyword matches multi-word terms as substrings and single-word
// terms as token prefixes so Turkish suffixes still match.
func (c *Classifier) containsKeyword(msg string) (string, bool) {
	for _, term := range c.vocab.Terms() {
		if strings.Contains(term, " ") {
			if strings.Contains(msg, term) {
				return term, true
			}
			continue
		}
		if utils.HasTokenPrefix(msg, term) {
			return term, true
		}
	}
	return "", false
}

func (c *Classifier) namedEntity(snap *models.Snapshot, msg string) (string, bool) {
	if cl, ok := c.matcher.Clinic(snap, msg); ok {
		return cl.Name, true
	}
	if u, ok := c.matcher.User(snap, msg); ok {
		return u.Name, true
	}
	if p, ok := c.matcher.Product(snap, msg); ok {
		return p.Name, true
	}
	if cp, ok := c.matcher.Campaign(snap, msg); ok {
		return cp.Name, true
	}
	return "", false
}

func fuzzyTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !strings.Contains(t, " ") && len([]rune(t)) >= keyword.MinFuzzyLength {
			out = append(out, t)
		}
	}
	return out
}

// contentTokens drops filler words before typo matching.
func contentTokens(msg string) []string {
	tokens := utils.Tokens(msg)
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := fillerWords[tok]; !ok {
			out = append(out, tok)
		}
	}
	return out
}

// IsGreeting reports whether a message opens with a greeting.
func IsGreeting(message string) bool {
	msg := utils.Normalize(message)
	for _, g := range greetingOpeners {
		if msg == g || strings.HasPrefix(msg, g+" ") || strings.HasPrefix(msg, g+",") || strings.HasPrefix(msg, g+"!") {
			return true
		}
	}
	return false
}

// onlySmallTalk reports whether every token of msg is a greeting or courtesy word.
func onlySmallTalk(msg string) bool {
	tokens := utils.Tokens(msg)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := greetingWords[tok]; !ok {
			return false
		}
	}
	return true
}
