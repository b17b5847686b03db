package ensemble

import (
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
)

// #region method

// Method tags which path produced the hybrid estimate.
type Method string

const (
	MethodBayesian Method = "bayesian"
	MethodEnsemble Method = "ensemble"
)

// #endregion method

// #region turn-bucket

// TurnBucket groups turn counts for the fusion weight schedule.
type TurnBucket string

const (
	BucketEarly TurnBucket = "early" // turns 1-2
	BucketMid   TurnBucket = "mid"   // turns 3-4
	BucketLate  TurnBucket = "late"  // turns 5+
)

func bucketFor(turn int) TurnBucket {
	switch {
	case turn <= 2:
		return BucketEarly
	case turn <= 4:
		return BucketMid
	}
	return BucketLate
}

// #endregion turn-bucket

// #region weights

// Weights is one fusion weight pair; Bayesian + Classifier should sum to 1.
type Weights struct {
	Bayesian   float64 `yaml:"bayesian"`
	Classifier float64 `yaml:"classifier"`
}

// WeightSchedule maps turn bucket and prior informedness to fusion weights.
// An informed prior shifts weight toward the Bayesian estimate in every
// bucket, since it is more trustworthy when cold-starting.
type WeightSchedule map[TurnBucket]map[bool]Weights

// DefaultWeightSchedule returns the standard schedule.
func DefaultWeightSchedule() WeightSchedule {
	return WeightSchedule{
		BucketEarly: {
			false: {Bayesian: 0.5, Classifier: 0.5},
			true:  {Bayesian: 0.7, Classifier: 0.3},
		},
		BucketMid: {
			false: {Bayesian: 0.6, Classifier: 0.4},
			true:  {Bayesian: 0.75, Classifier: 0.25},
		},
		BucketLate: {
			false: {Bayesian: 0.7, Classifier: 0.3},
			true:  {Bayesian: 0.8, Classifier: 0.2},
		},
	}
}

// #endregion weights

// #region stability

// Verdict classifies the recent belief trend.
type Verdict string

const (
	VerdictStable       Verdict = "stable"
	VerdictVolatile     Verdict = "volatile"     // frequent top-pattern changes
	VerdictDeclining    Verdict = "declining"    // negative confidence trend
	VerdictInsufficient Verdict = "insufficient" // too few snapshots to judge
)

// Stability is the trend block attached to a hybrid estimate.
type Stability struct {
	Verdict   Verdict `json:"verdict"`
	IsStable  bool    `json:"isStable"`
	Snapshots int     `json:"snapshots"`
}

// snapshot is one bounded-window entry.
type snapshot struct {
	pattern    belief.Pattern
	confidence float64
	at         time.Time
}

// #endregion stability

// #region hybrid-belief

// HybridBelief extends a Belief with the two sub-estimates, the stability
// block, and the fusion method tag.
type HybridBelief struct {
	belief.Belief
	Method     Method         `json:"method"`
	Bayesian   belief.Belief  `json:"bayesian"`
	Classifier *belief.Belief `json:"classifier,omitempty"`
	Stability  Stability      `json:"stability"`
}

// #endregion hybrid-belief
