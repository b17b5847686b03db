package activator

import (
	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region urgency

// Urgency is the escalation level of an intervention.
type Urgency string

const (
	UrgencyObserve Urgency = "observe"
	UrgencyRemind  Urgency = "remind"
	UrgencyEnforce Urgency = "enforce"
)

// escalate bumps urgency one level; enforce is the ceiling.
func escalate(u Urgency) Urgency {
	switch u {
	case UrgencyObserve:
		return UrgencyRemind
	case UrgencyRemind:
		return UrgencyEnforce
	}
	return UrgencyEnforce
}

// Tier is the display strength derived from urgency.
type Tier string

const (
	TierSoft   Tier = "soft"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// Mode is the display surface derived from urgency.
type Mode string

const (
	ModeInline  Mode = "inline"
	ModeSidebar Mode = "sidebar"
	ModeModal   Mode = "modal"
)

// displayFor maps urgency to its display tier and mode.
func displayFor(u Urgency) (Tier, Mode) {
	switch u {
	case UrgencyRemind:
		return TierMedium, ModeSidebar
	case UrgencyEnforce:
		return TierHard, ModeModal
	}
	return TierSoft, ModeInline
}

// #endregion urgency

// #region definition

// Definition is a static catalog entry for one intervention rule.
type Definition struct {
	ID          string
	Name        string
	BaseUrgency Urgency

	// Unconditional rules carry a fixed priority and skip the per-pattern
	// modifier table. Reserved for safety-critical thresholds.
	Unconditional bool

	Trigger  func(sig signals.Signals, b belief.Belief) bool
	Priority func(sig signals.Signals) float64

	// Modifiers is additive per archetype; -100 effectively disables the
	// rule for that archetype.
	Modifiers map[belief.Pattern]float64

	Message func(sig signals.Signals, p belief.Pattern) string
	Reason  func(sig signals.Signals) string
}

// #endregion definition

// #region active

// Active is one intervention selected for the current turn.
type Active struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Urgency  Urgency `json:"urgency"`
	Tier     Tier    `json:"tier"`
	Mode     Mode    `json:"mode"`
	Message  string  `json:"message"`
	Priority float64 `json:"priority"`
	Reason   string  `json:"reason"`
}

// #endregion active

// #region fatigue

// Fatigue tracks interventions shown within the current suppression window.
// Owned by one session and passed alongside its estimator; never share a
// fatigue set across sessions.
type Fatigue struct {
	shown map[string]bool
}

// NewFatigue returns an empty fatigue set.
func NewFatigue() *Fatigue {
	return &Fatigue{shown: make(map[string]bool)}
}

// Reset clears the suppression window.
func (f *Fatigue) Reset() {
	f.shown = make(map[string]bool)
}

// Seen reports whether the rule was shown in the current window.
func (f *Fatigue) Seen(id string) bool {
	return f.shown[id]
}

// Mark records that the rule was shown this window.
func (f *Fatigue) Mark(id string) {
	f.shown[id] = true
}

// #endregion fatigue
