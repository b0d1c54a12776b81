package grading

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Grader runs one submission through the matcher and aggregates a scored
// result. A single Grade call is synchronous and owns all of its working
// state, so one Grader may serve concurrent runs; the GoldSolution is only
// read.
type Grader struct {
	cfg Config
	cmp *Comparator
}

func NewGrader(cfg Config) *Grader {
	return &Grader{cfg: cfg, cmp: NewComparator(cfg)}
}

// Grade evaluates studentSteps in order against gold. Empty student lines are
// skipped without producing an evaluation. Matching a gold step removes it
// from the pool, so no step is credited twice; a match that follows a
// still-unmatched earlier required step earns penalized credit.
func (g *Grader) Grade(studentSteps []string, gold *GoldSolution) *Result {
	available := make([]GoldStep, len(gold.Steps))
	copy(available, gold.Steps)

	unmetRequired := map[int]bool{}
	for _, st := range gold.Steps {
		if st.Required {
			unmetRequired[st.Position] = true
		}
	}

	evaluations := make([]StepEvaluation, 0, len(studentSteps))
	for _, text := range studentSteps {
		if strings.TrimSpace(text) == "" {
			continue
		}

		cand, ok := g.cmp.BestMatch(text, available)
		if !ok {
			evaluations = append(evaluations, StepEvaluation{
				StudentText: text,
				Status:      StatusIncorrect,
				Kind:        MatchNone,
				Feedback:    "No matching step found in the reference solution",
			})
			continue
		}

		matched := available[cand.Index]
		available = append(available[:cand.Index], available[cand.Index+1:]...)
		delete(unmetRequired, matched.Position)

		points := float64(matched.Points) * cand.Score
		penalty := false
		for pos := range unmetRequired {
			if pos < matched.Position {
				penalty = true
				break
			}
		}
		if penalty {
			points *= g.cfg.PenaltyFactor
		}

		status := StatusPartial
		if cand.Score >= g.cfg.CorrectThreshold {
			status = StatusCorrect
		}

		step := matched
		evaluations = append(evaluations, StepEvaluation{
			StudentText:    text,
			Matched:        &step,
			Status:         status,
			PointsEarned:   round2(points),
			PointsPossible: matched.Points,
			MatchScore:     cand.Score,
			Kind:           cand.Kind,
			PenaltyApplied: penalty,
			Feedback:       stepFeedback(status, cand.Score, cand.Kind, penalty),
		})
	}

	missing := make([]int, 0, len(unmetRequired))
	for pos := range unmetRequired {
		missing = append(missing, pos)
	}
	sort.Ints(missing)

	return &Result{
		Evaluations: evaluations,
		Summary:     g.summarize(evaluations, gold, missing),
	}
}

func (g *Grader) summarize(evaluations []StepEvaluation, gold *GoldSolution, missing []int) Summary {
	s := Summary{
		TotalPossible:   gold.TotalPoints(),
		StepsGraded:     len(evaluations),
		StepsExpected:   len(gold.Steps),
		MissingRequired: missing,
	}
	for _, e := range evaluations {
		s.TotalEarned += e.PointsEarned
		switch e.Status {
		case StatusCorrect:
			s.CorrectSteps++
		case StatusPartial:
			s.PartialSteps++
		default:
			s.IncorrectSteps++
		}
	}
	s.TotalEarned = round2(s.TotalEarned)
	if s.TotalPossible > 0 {
		s.Percentage = round2(s.TotalEarned / float64(s.TotalPossible) * 100)
	}
	return s
}

// stepFeedback names the match kind and notes an applied penalty, so the
// student can tell why credit was or was not given.
func stepFeedback(status StepStatus, score float64, kind MatchKind, penalty bool) string {
	var b strings.Builder
	switch status {
	case StatusCorrect:
		b.WriteString("Correct (")
		b.WriteString(kindPhrase(kind))
		b.WriteString(")")
	default:
		fmt.Fprintf(&b, "Partially correct, %.0f%% match (%s)", score*100, kindPhrase(kind))
	}
	if penalty {
		b.WriteString("; credit reduced: an earlier required step is missing")
	}
	return b.String()
}

func kindPhrase(kind MatchKind) string {
	switch kind {
	case MatchExact:
		return "exact match"
	case MatchNormalized:
		return "notation-normalized match"
	case MatchSymbolic:
		return "mathematically equivalent"
	case MatchSymbolicScaled:
		return "equivalent up to a constant factor"
	case MatchDerivationSub:
		return "valid but incomplete derivation"
	case MatchDerivationTerm:
		return "shares most terms with the expected step"
	case MatchSimilarity:
		return "similar wording"
	default:
		return string(kind)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
