package signals

import "time"

// #region turn

// Turn is a single conversation turn. Immutable once created.
type Turn struct {
	ID            string    `json:"id"`
	UserText      string    `json:"userText"`
	AssistantText string    `json:"assistantText,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"sessionId"`
}

// #endregion turn

// #region risk-level

// RiskLevel grades the consequence severity of the task described in a turn.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// #endregion risk-level

// #region signals

// Signals is the fixed-shape behavioral feature vector extracted from one
// turn plus its history. Scored dimensions use a 0-3 scale. Produced fresh
// each turn and never mutated afterwards.
type Signals struct {
	// Planning
	TaskDecomposition  int      `json:"taskDecomposition"` // 0-3
	GoalClarity        int      `json:"goalClarity"`       // 0-3
	StrategyMentioned  bool     `json:"strategyMentioned"`
	PreparationActions []string `json:"preparationActions"`

	// Monitoring
	VerificationAttempted bool `json:"verificationAttempted"`
	QualityCheck          bool `json:"qualityCheck"`
	ContextAwareness      int  `json:"contextAwareness"` // 0-3

	// Evaluation
	OutputEvaluation    bool `json:"outputEvaluation"`
	ReflectionDepth     int  `json:"reflectionDepth"` // 0-3
	CapabilityAwareness bool `json:"capabilityAwareness"`

	// Regulation
	IterationCount   int      `json:"iterationCount"`
	TrustCalibration []string `json:"trustCalibration"`

	// Derived scalars
	TaskComplexity     int       `json:"taskComplexity"`   // 0-3
	AIRelianceDegree   int       `json:"aiRelianceDegree"` // 0-3
	TrustScore         float64   `json:"trustScore"`       // 0-1
	TrustChange        float64   `json:"trustChange"`
	TaskRiskLevel      RiskLevel `json:"taskRiskLevel"`
	IrreversibleAction bool      `json:"irreversibleAction"`

	// Turn-position counters
	MessageIndex          int `json:"messageIndex"`
	UnverifiedConsecutive int `json:"unverifiedConsecutive"`
	SessionDurationTurns  int `json:"sessionDurationTurns"`
}

// #endregion signals

// #region dimension-view

// DimensionKey names one scored dimension in the p/m/e/r scheme used by the
// likelihood table and the external classifier.
type DimensionKey string

const (
	DimP1 DimensionKey = "p1" // task decomposition
	DimP2 DimensionKey = "p2" // goal clarity
	DimP3 DimensionKey = "p3" // strategy mentioned
	DimP4 DimensionKey = "p4" // preparation actions
	DimM1 DimensionKey = "m1" // verification attempted
	DimM2 DimensionKey = "m2" // quality check
	DimM3 DimensionKey = "m3" // context awareness
	DimE1 DimensionKey = "e1" // output evaluation
	DimE2 DimensionKey = "e2" // reflection depth
	DimE3 DimensionKey = "e3" // capability awareness
	DimR1 DimensionKey = "r1" // iteration count
	DimR2 DimensionKey = "r2" // trust calibration
)

// DimensionKeys lists the twelve scored dimensions in canonical order.
var DimensionKeys = []DimensionKey{
	DimP1, DimP2, DimP3, DimP4,
	DimM1, DimM2, DimM3,
	DimE1, DimE2, DimE3,
	DimR1, DimR2,
}

// Dimensions projects the signal vector onto the twelve 0-3 dimensions.
// Boolean flags map to 0 or 3; tag lists are capped at 3.
func (s Signals) Dimensions() map[DimensionKey]int {
	return map[DimensionKey]int{
		DimP1: s.TaskDecomposition,
		DimP2: s.GoalClarity,
		DimP3: boolScore(s.StrategyMentioned),
		DimP4: capScore(len(s.PreparationActions)),
		DimM1: boolScore(s.VerificationAttempted),
		DimM2: boolScore(s.QualityCheck),
		DimM3: s.ContextAwareness,
		DimE1: boolScore(s.OutputEvaluation),
		DimE2: s.ReflectionDepth,
		DimE3: boolScore(s.CapabilityAwareness),
		DimR1: capScore(s.IterationCount),
		DimR2: capScore(len(s.TrustCalibration)),
	}
}

func boolScore(b bool) int {
	if b {
		return 3
	}
	return 0
}

func capScore(n int) int {
	if n > 3 {
		return 3
	}
	return n
}

// #endregion dimension-view
