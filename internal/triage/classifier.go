// Package triage provides a deterministic, concurrency-safe symptom
// classifier built from keyword and phrase rules. It is intentionally small
// and dependency-free, but engineered with production-grade ergonomics:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Unicode-aware normalization of free-text input
//   - Immutable rule set after construction (safe for concurrent use)
//   - Deterministic output for identical input (test suites rely on this)
//   - Hard overrides for red-flag symptom classes: a cardiac or respiratory
//     emergency forces a critical score regardless of other signal
//
// The engine maps free text to an urgency band: red (score >= 9),
// orange (6-8), or green (< 6). Empty or unintelligible input yields a
// low-confidence routine classification rather than an error so that a
// conversation can continue gracefully.
package triage

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// Assessment is the structured urgency classification for one symptom text.
type Assessment struct {
	// Score is the urgency rating, 0-10, 10 most urgent.
	Score int
	// Color is the triage bucket derived from Score (and red-flag overrides).
	Color domain.ColorCode
	// Category is a short clinical label such as "Cardiac" or "Routine".
	Category string
	// RecommendedAction is human-readable guidance consistent with the band.
	RecommendedAction string
	// Reasoning explains, in plain language, why the band was chosen.
	Reasoning string
	// Confident is false for empty or unintelligible input; the conversation
	// layer uses it to keep asking instead of booking.
	Confident bool
	// RedFlags lists the matched emergency phrases, in match order.
	RedFlags []string
}

// Urgent reports whether the assessment demands the emergency path.
func (a Assessment) Urgent() bool { return a.Color == domain.ColorRed }

// Coverage describes which clinically useful aspects the patient has
// mentioned so far. The conversation manager uses it to decide whether to
// ask a clarifying question and which one.
type Coverage struct {
	Symptom  bool // any recognized symptom keyword
	Duration bool // "since", "for two days", ...
	Severity bool // "mild", "severe", pain scale words
}

// Sufficient reports whether enough information is present to emit a final
// assessment without further questions.
func (c Coverage) Sufficient() bool {
	return c.Symptom && (c.Duration || c.Severity)
}

// ----------------------------------------------------------------------------
// Options

// Option customizes a Classifier at construction time.
type Option func(*ruleset)

// WithRedFlags appends emergency phrases for a category. Any match forces a
// critical score.
func WithRedFlags(category string, phrases ...string) Option {
	return func(rs *ruleset) {
		for _, p := range phrases {
			if p = normalize(p); p != "" {
				rs.redFlags = append(rs.redFlags, phraseRule{phrase: p, category: category})
			}
		}
	}
}

// WithModerateKeywords appends mid-severity keywords for a category.
func WithModerateKeywords(category string, words ...string) Option {
	return func(rs *ruleset) {
		for _, w := range words {
			if w = normalize(w); w != "" {
				rs.moderate = append(rs.moderate, phraseRule{phrase: w, category: category})
			}
		}
	}
}

// WithMinorKeywords appends routine-band symptom keywords.
func WithMinorKeywords(words ...string) Option {
	return func(rs *ruleset) {
		for _, w := range words {
			if w = normalize(w); w != "" {
				rs.minor = append(rs.minor, w)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type phraseRule struct {
	phrase   string
	category string
}

type ruleset struct {
	redFlags []phraseRule
	moderate []phraseRule
	minor    []string
	severity []string
	mild     []string
	duration []string
}

// Classifier is an immutable rule engine. It is safe for concurrent use.
type Classifier struct {
	rules ruleset
}

// NewClassifier builds a Classifier with the default clinical rule set,
// optionally extended by opts. Rule order is fixed at construction, which
// keeps category selection deterministic.
func NewClassifier(opts ...Option) *Classifier {
	rs := defaultRules()
	for _, o := range opts {
		o(&rs)
	}
	return &Classifier{rules: rs}
}

// Assess classifies the given symptom text. It never returns an error: bad
// input degrades to a low-confidence routine result. The ctx parameter is
// accepted to satisfy the Assessor contract; the rule engine itself does
// not block.
func (c *Classifier) Assess(_ context.Context, text string) (Assessment, error) {
	norm := normalize(text)
	if norm == "" {
		return Assessment{
			Score:             1,
			Color:             domain.ColorGreen,
			Category:          "Routine",
			RecommendedAction: "Queue for the general practitioner.",
			Reasoning:         "No symptom description provided; defaulting to a routine check-up.",
			Confident:         false,
		}, nil
	}

	// Red flags are a hard override, not a weighted vote.
	if flags, category := c.matchRedFlags(norm); len(flags) > 0 {
		score := 9
		if len(flags) >= 2 {
			score = 10
		}
		return Assessment{
			Score:             score,
			Color:             domain.ColorRed,
			Category:          category,
			RecommendedAction: "Admit to the resus area immediately. Prepare ECG.",
			Reasoning:         "Red-flag symptoms detected (" + strings.Join(flags, ", ") + "). Immediate intervention required.",
			Confident:         true,
			RedFlags:          flags,
		}, nil
	}

	if hits, category := c.matchModerate(norm); hits > 0 {
		score := 5 + hits
		if c.hasAny(norm, c.rules.severity) {
			score++
		}
		if score > 8 {
			score = 8
		}
		if score < 6 {
			score = 6
		}
		return Assessment{
			Score:             score,
			Color:             domain.ColorOrange,
			Category:          category,
			RecommendedAction: "Route to the triage nurse for a vitals check.",
			Reasoning:         "Signs of a persistent but non-emergency condition. Patient stable but requires attention.",
			Confident:         true,
		}, nil
	}

	if c.hasAny(norm, c.rules.minor) {
		// Severe language promotes an otherwise minor complaint to orange.
		if c.hasAny(norm, c.rules.severity) {
			return Assessment{
				Score:             6,
				Color:             domain.ColorOrange,
				Category:          "Pain Management",
				RecommendedAction: "Route to the triage nurse for a vitals check.",
				Reasoning:         "Severe language around an otherwise minor complaint. Patient stable but requires attention.",
				Confident:         true,
			}, nil
		}
		score := 3
		if c.hasAny(norm, c.rules.mild) {
			score = 2
		}
		return Assessment{
			Score:             score,
			Color:             domain.ColorGreen,
			Category:          "Routine",
			RecommendedAction: "Queue for the general practitioner.",
			Reasoning:         "No critical keywords detected. Likely minor ailment or chronic check-up.",
			Confident:         true,
		}, nil
	}

	// Intelligible text, but nothing we recognize as a symptom.
	return Assessment{
		Score:             2,
		Color:             domain.ColorGreen,
		Category:          "Routine",
		RecommendedAction: "Queue for the general practitioner.",
		Reasoning:         "No recognizable symptoms described; defaulting to a routine visit.",
		Confident:         false,
	}, nil
}

// Coverage reports which triage aspects the text already covers.
func (c *Classifier) Coverage(text string) Coverage {
	norm := normalize(text)
	if norm == "" {
		return Coverage{}
	}
	symptom := false
	if flags, _ := c.matchRedFlags(norm); len(flags) > 0 {
		symptom = true
	} else if hits, _ := c.matchModerate(norm); hits > 0 {
		symptom = true
	} else if c.hasAny(norm, c.rules.minor) {
		symptom = true
	}
	return Coverage{
		Symptom:  symptom,
		Duration: c.hasAny(norm, c.rules.duration),
		Severity: c.hasAny(norm, c.rules.severity) || c.hasAny(norm, c.rules.mild),
	}
}

// matchRedFlags returns matched emergency phrases (deduplicated, rule order)
// and the category of the first match.
func (c *Classifier) matchRedFlags(norm string) ([]string, string) {
	var flags []string
	category := ""
	seen := make(map[string]struct{})
	for _, r := range c.rules.redFlags {
		if !containsPhrase(norm, r.phrase) {
			continue
		}
		if _, dup := seen[r.phrase]; dup {
			continue
		}
		seen[r.phrase] = struct{}{}
		flags = append(flags, r.phrase)
		if category == "" {
			category = r.category
		}
	}
	return flags, category
}

// matchModerate returns the number of distinct mid-severity hits and the
// category of the first match.
func (c *Classifier) matchModerate(norm string) (int, string) {
	hits := 0
	category := ""
	seen := make(map[string]struct{})
	for _, r := range c.rules.moderate {
		if !containsPhrase(norm, r.phrase) {
			continue
		}
		if _, dup := seen[r.phrase]; dup {
			continue
		}
		seen[r.phrase] = struct{}{}
		hits++
		if category == "" {
			category = r.category
		}
	}
	return hits, category
}

func (c *Classifier) hasAny(norm string, words []string) bool {
	for _, w := range words {
		if containsPhrase(norm, w) {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Text helpers

var (
	punctRE = regexp.MustCompile(`[^\p{L}\p{N}']+`)
	multiWS = regexp.MustCompile(`\s+`)
)

// normalize lowercases, folds curly quotes and "cannot" variants to the
// apostrophe forms the rule phrases use, strips punctuation except
// apostrophes, and collapses whitespace. Phrases and inputs go through the
// same function so matching stays symmetric.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	s = strings.ReplaceAll(s, "cannot ", "can't ")
	s = strings.ReplaceAll(s, "can not ", "can't ")
	s = punctRE.ReplaceAllString(s, " ")
	s = multiWS.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// containsPhrase reports whether phrase occurs in norm on word boundaries.
func containsPhrase(norm, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(norm[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || norm[start-1] == ' '
		afterOK := end == len(norm) || norm[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(norm) {
			return false
		}
	}
}

// Phrases returns the configured red-flag phrases, sorted, for diagnostics
// and tests.
func (c *Classifier) Phrases() []string {
	out := make([]string, 0, len(c.rules.redFlags))
	for _, r := range c.rules.redFlags {
		out = append(out, r.phrase)
	}
	sort.Strings(out)
	return out
}
