package activator

import (
	"log"
	"sort"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region config

// Config tunes rule activation and fatigue suppression.
type Config struct {
	ActivationThreshold  float64 // minimum adjusted priority to surface a rule
	FatiguePenalty       float64 // subtracted when a rule was recently shown
	FatigueResetInterval int     // turns between fatigue resets
	MaxActive            int     // cap on interventions returned per turn
}

// DefaultConfig returns the standard activation configuration.
func DefaultConfig() Config {
	return Config{
		ActivationThreshold:  30,
		FatiguePenalty:       30,
		FatigueResetInterval: 5,
		MaxActive:            3,
	}
}

// #endregion config

// #region activator

// Activator evaluates the rule catalog against signals and the current
// belief. Stateless apart from the per-session fatigue set passed in.
type Activator struct {
	cfg     Config
	catalog []Definition
}

// New creates an activator over the built-in catalog.
func New(cfg Config) *Activator {
	return &Activator{cfg: cfg, catalog: Catalog()}
}

// NewWithCatalog creates an activator over a custom catalog. Used in tests.
func NewWithCatalog(cfg Config, catalog []Definition) *Activator {
	return &Activator{cfg: cfg, catalog: catalog}
}

// #endregion activator

// #region determine

// Determine evaluates every rule and returns at most MaxActive interventions
// sorted by descending adjusted priority. turnIndex is the 1-based count of
// user turns; fatigue is the session's suppression set.
func (a *Activator) Determine(sig signals.Signals, b belief.Belief, turnIndex int, fatigue *Fatigue) []Active {
	if turnIndex > 0 && turnIndex%a.cfg.FatigueResetInterval == 0 {
		fatigue.Reset()
	}

	var candidates []Active
	for _, def := range a.catalog {
		if !def.Trigger(sig, b) {
			continue
		}

		priority := def.Priority(sig)
		if !def.Unconditional {
			priority += def.Modifiers[b.TopPattern]
		}
		if priority < a.cfg.ActivationThreshold {
			continue
		}

		if fatigue.Seen(def.ID) {
			priority -= a.cfg.FatiguePenalty
			if priority < a.cfg.ActivationThreshold {
				continue
			}
		}

		urgency := resolveUrgency(def.BaseUrgency, sig, b.TopPattern)
		tier, mode := displayFor(urgency)

		candidates = append(candidates, Active{
			ID:       def.ID,
			Name:     def.Name,
			Urgency:  urgency,
			Tier:     tier,
			Mode:     mode,
			Message:  def.Message(sig, b.TopPattern),
			Priority: priority,
			Reason:   def.Reason(sig),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	if len(candidates) > a.cfg.MaxActive {
		candidates = candidates[:a.cfg.MaxActive]
	}

	for _, c := range candidates {
		fatigue.Mark(c.ID)
		log.Printf("[ACT] turn %d: %s priority=%.1f urgency=%s", turnIndex, c.ID, c.Priority, c.Urgency)
	}
	return candidates
}

// #endregion determine

// #region urgency-resolution

// resolveUrgency escalates the base urgency by task risk, then one more
// level when the over-reliance archetype meets any non-trivial risk.
func resolveUrgency(base Urgency, sig signals.Signals, top belief.Pattern) Urgency {
	u := base
	switch sig.TaskRiskLevel {
	case signals.RiskCritical:
		u = UrgencyEnforce
	case signals.RiskHigh:
		if u == UrgencyObserve {
			u = UrgencyRemind
		}
	}
	if top == belief.PatternF && sig.TaskRiskLevel != signals.RiskLow {
		u = escalate(u)
	}
	return u
}

// #endregion urgency-resolution
