package history

import (
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
)

// #region detection

// Detection is one row of the append-only pattern detection log.
type Detection struct {
	ID           string
	UserID       string
	SessionID    string
	Pattern      belief.Pattern
	Confidence   float64
	Distribution belief.Distribution
	CreatedAt    time.Time
}

// #endregion detection

// #region stability-snapshot

// StabilitySnapshot is one row of the stability snapshot log.
type StabilitySnapshot struct {
	UserID     string
	SessionID  string
	Pattern    belief.Pattern
	Confidence float64
	Verdict    string
	CreatedAt  time.Time
}

// #endregion stability-snapshot

// #region summary

// Summary is the cross-session aggregate view of a user's detections.
type Summary struct {
	Dominant      belief.Pattern
	AvgConfidence float64
	Distribution  map[belief.Pattern]int
	SampleCount   int
	LastSeen      time.Time
}

// #endregion summary
