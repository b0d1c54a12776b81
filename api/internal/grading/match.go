package grading

// Candidate is an ephemeral best-match result, consumed immediately by the
// scorer.
type Candidate struct {
	Index int // index into the pool passed to BestMatch
	Score float64
	Kind  MatchKind
}

// BestMatch compares studentText against every still-available gold step and
// keeps the strictly highest-scoring candidate; on an exact tie the
// first-seen step wins, so results are deterministic in pool order. Returns
// ok=false when the best score is below the acceptance floor. Stateless: the
// caller owns removing a claimed step from the pool.
func (c *Comparator) BestMatch(studentText string, pool []GoldStep) (Candidate, bool) {
	best := Candidate{Index: -1, Kind: MatchNone}
	for i, gold := range pool {
		score, kind := c.Compare(studentText, gold.Content)
		if score > best.Score {
			best = Candidate{Index: i, Score: score, Kind: kind}
		}
	}
	if best.Index < 0 || best.Score < c.cfg.AcceptanceFloor {
		return Candidate{Index: -1, Kind: MatchNone}, false
	}
	return best, true
}
