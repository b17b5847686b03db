package belief

// #region patterns

// Pattern identifies one of the six behavioral archetypes.
type Pattern string

const (
	PatternA Pattern = "A" // strategic decomposition
	PatternB Pattern = "B" // iterative refinement
	PatternC Pattern = "C" // moderate balanced use
	PatternD Pattern = "D" // critical evaluation
	PatternE Pattern = "E" // pedagogical reflection
	PatternF Pattern = "F" // passive over-reliance
)

// Patterns lists all archetypes in canonical order. Iterate this instead of
// ranging over a Distribution so tie-breaks are deterministic.
var Patterns = []Pattern{PatternA, PatternB, PatternC, PatternD, PatternE, PatternF}

// Description returns a short human-readable label for the pattern.
func (p Pattern) Description() string {
	switch p {
	case PatternA:
		return "strategic decomposition"
	case PatternB:
		return "iterative refinement"
	case PatternC:
		return "moderate balanced use"
	case PatternD:
		return "critical evaluation"
	case PatternE:
		return "pedagogical reflection"
	case PatternF:
		return "passive over-reliance"
	}
	return "unknown"
}

// Valid reports whether p is one of the six archetypes.
func (p Pattern) Valid() bool {
	switch p {
	case PatternA, PatternB, PatternC, PatternD, PatternE, PatternF:
		return true
	}
	return false
}

// #endregion patterns

// #region distribution

// Distribution is a probability distribution over the six archetypes.
// A well-formed distribution is non-negative and sums to 1.
type Distribution map[Pattern]float64

// Uniform returns the 1/6 prior.
func Uniform() Distribution {
	d := make(Distribution, len(Patterns))
	for _, p := range Patterns {
		d[p] = 1.0 / float64(len(Patterns))
	}
	return d
}

// Clone returns an independent copy of the distribution.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(Patterns))
	for _, p := range Patterns {
		out[p] = d[p]
	}
	return out
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, p := range Patterns {
		sum += d[p]
	}
	return sum
}

// Normalize scales the distribution in place so it sums to 1.
// A zero-mass distribution becomes uniform rather than NaN.
func (d Distribution) Normalize() {
	sum := d.Sum()
	if sum <= 0 {
		for _, p := range Patterns {
			d[p] = 1.0 / float64(len(Patterns))
		}
		return
	}
	for _, p := range Patterns {
		d[p] /= sum
	}
}

// Top returns the highest-probability pattern and its probability.
// Ties resolve to the earlier pattern in canonical order.
func (d Distribution) Top() (Pattern, float64) {
	best := Patterns[0]
	bestProb := d[best]
	for _, p := range Patterns[1:] {
		if d[p] > bestProb {
			best = p
			bestProb = d[p]
		}
	}
	return best, bestProb
}

// Confidence returns P(top1) - P(top2), always in [0, 1].
func (d Distribution) Confidence() float64 {
	var top1, top2 float64
	for _, p := range Patterns {
		v := d[p]
		if v > top1 {
			top2 = top1
			top1 = v
		} else if v > top2 {
			top2 = v
		}
	}
	c := top1 - top2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// #endregion distribution

// #region prior-source

// PriorSource records which precedence tier produced the initial prior.
type PriorSource string

const (
	PriorAssessment PriorSource = "assessment"
	PriorHistory    PriorSource = "history"
	PriorUniform    PriorSource = "uniform"
)

// Informed reports whether the prior came from assessment or history.
func (s PriorSource) Informed() bool {
	return s == PriorAssessment || s == PriorHistory
}

// #endregion prior-source

// #region belief

// Belief is a point-in-time estimate of the user's behavioral pattern.
type Belief struct {
	Distribution Distribution `json:"distribution"`
	TopPattern   Pattern      `json:"topPattern"`
	Confidence   float64      `json:"confidence"`
	NeedMoreData bool         `json:"needMoreData"`
	PriorSource  PriorSource  `json:"priorSource"`
	TurnCount    int          `json:"turnCount"`
	Evidence     []string     `json:"evidence"`
}

// FromDistribution builds a Belief with derived fields filled in.
func FromDistribution(d Distribution, source PriorSource, turnCount int, evidence []string) Belief {
	top, _ := d.Top()
	return Belief{
		Distribution: d,
		TopPattern:   top,
		Confidence:   d.Confidence(),
		PriorSource:  source,
		TurnCount:    turnCount,
		Evidence:     evidence,
	}
}

// #endregion belief
