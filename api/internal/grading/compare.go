package grading

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"grader-bot/api/internal/mathexpr"
)

// MatchKind tags which comparison stage produced a match.
type MatchKind string

const (
	MatchExact          MatchKind = "exact"
	MatchNormalized     MatchKind = "normalized"
	MatchSymbolic       MatchKind = "symbolic"
	MatchSymbolicScaled MatchKind = "symbolic-scaled"
	MatchDerivationSub  MatchKind = "derivation-substring"
	MatchDerivationTerm MatchKind = "derivation-shared-terms"
	MatchSimilarity     MatchKind = "similarity"
	MatchNone           MatchKind = "none"
)

// Config is the full tuning surface of the grading core. It never reads the
// environment; callers that want overrides pass them in.
type Config struct {
	NumericTolerance    float64 // residual treated as zero in symbolic checks
	SimilarityThreshold float64 // minimum text-similarity ratio to accept
	AcceptanceFloor     float64 // minimum best-match score worth crediting
	PenaltyFactor       float64 // multiplier after a skipped required step
	CorrectThreshold    float64 // match score at which a step is fully Correct
}

func DefaultConfig() Config {
	return Config{
		NumericTolerance:    1e-6,
		SimilarityThreshold: 0.8,
		AcceptanceFloor:     0.5,
		PenaltyFactor:       0.5,
		CorrectThreshold:    0.95,
	}
}

// Comparator scores a (student step, gold step) pair. Pure and deterministic:
// same inputs, same output.
type Comparator struct {
	cfg Config
}

func NewComparator(cfg Config) *Comparator {
	return &Comparator{cfg: cfg}
}

// symbolicAccept is the acceptance bar of the symbolic stage. A scaled match
// scores exactly 0.9 and must be accepted, so the check is inclusive.
const symbolicAccept = 0.9

// Compare runs the staged pipeline: exact, normalized, symbolic, derivation
// heuristic, text similarity. The first stage that clears its own acceptance
// bar wins; a stage that falls short is discarded, not returned.
func (c *Comparator) Compare(studentText, goldText string) (float64, MatchKind) {
	// 1. exact
	if strings.TrimSpace(studentText) == strings.TrimSpace(goldText) {
		return 1, MatchExact
	}

	// 2. normalized
	ns := normalizeText(studentText)
	ng := normalizeText(goldText)
	if ns == ng {
		return 1, MatchNormalized
	}

	// 3. symbolic equivalence
	if score, kind := mathexpr.Equivalent(studentText, goldText, c.cfg.NumericTolerance); score >= symbolicAccept {
		if kind == mathexpr.KindScaled {
			return score, MatchSymbolicScaled
		}
		return score, MatchSymbolic
	}

	// 4. derivation heuristic: an intermediate, not-yet-simplified form of
	// the other side. Substring containment first, then shared-term overlap.
	if ns != "" && ng != "" {
		if strings.Contains(ns, ng) || strings.Contains(ng, ns) {
			return 0.7, MatchDerivationSub
		}
		if overlap := termOverlap(ns, ng); overlap > 0.7 {
			return 0.6, MatchDerivationTerm
		}
	}

	// 5. text similarity, for prose explanations
	if ratio := similarityRatio(studentText, goldText); ratio >= c.cfg.SimilarityThreshold {
		return ratio, MatchSimilarity
	}

	return 0, MatchNone
}

// normalizeText lowercases, strips all whitespace and canonicalizes operator
// glyphs so notation variants compare equal.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, "×", "*")
	s = strings.ReplaceAll(s, "÷", "/")
	s = strings.ReplaceAll(s, "**", "^")
	s = strings.ReplaceAll(s, "==", "=")
	return s
}

var termPattern = regexp.MustCompile(`[a-z]\^?\d?`)

// termOverlap computes |A∩B| / max(|A|,|B|) over single-letter terms with an
// optional exponent.
func termOverlap(a, b string) float64 {
	ta := termSet(a)
	tb := termSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for t := range ta {
		if tb[t] {
			common++
		}
	}
	max := len(ta)
	if len(tb) > max {
		max = len(tb)
	}
	return float64(common) / float64(max)
}

func termSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range termPattern.FindAllString(s, -1) {
		set[t] = true
	}
	return set
}

// similarityRatio is difflib's longest-matching-blocks ratio over lowercased
// characters.
func similarityRatio(a, b string) float64 {
	m := difflib.NewMatcher(splitChars(strings.ToLower(a)), splitChars(strings.ToLower(b)))
	return m.Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
