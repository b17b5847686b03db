package activator

import (
	"fmt"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region risk-boost

// riskBoost is the urgency surcharge added to priority formulas that scale
// with task risk.
func riskBoost(sig signals.Signals) float64 {
	switch sig.TaskRiskLevel {
	case signals.RiskCritical:
		return 45
	case signals.RiskHigh:
		return 15
	}
	return 0
}

// #endregion risk-boost

// #region catalog

// Catalog returns the built-in intervention rule definitions.
func Catalog() []Definition {
	return []Definition{
		{
			ID:          "mr_task_decomposition",
			Name:        "Task Decomposition Prompt",
			BaseUrgency: UrgencyRemind,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.TaskComplexity >= 2 && sig.TaskDecomposition <= 1
			},
			Priority: func(sig signals.Signals) float64 {
				return 40 + 5*float64(sig.TaskComplexity-sig.TaskDecomposition)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -100,
				belief.PatternB: -10,
				belief.PatternD: -10,
				belief.PatternF: 15,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return fmt.Sprintf("This looks like a complex task. Users with a %s style often get better results by splitting it into smaller steps before asking.", p.Description())
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("complexity %d with decomposition %d", sig.TaskComplexity, sig.TaskDecomposition)
			},
		},
		{
			ID:          "mr_verification_prompt",
			Name:        "Verification Prompt",
			BaseUrgency: UrgencyObserve,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return !sig.VerificationAttempted && sig.MessageIndex >= 2
			},
			Priority: func(sig signals.Signals) float64 {
				streak := sig.UnverifiedConsecutive
				if streak > 3 {
					streak = 3
				}
				return 32 + 4*float64(streak)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -15,
				belief.PatternD: -100,
				belief.PatternF: 10,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "You haven't checked any of the recent answers. A quick verification of one key claim keeps errors from compounding."
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("no verification language, %d unverified in a row", sig.UnverifiedConsecutive)
			},
		},
		{
			ID:          "mr_cost_benefit",
			Name:        "Cost-Benefit Check",
			BaseUrgency: UrgencyRemind,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.IrreversibleAction && len(sig.PreparationActions) == 0
			},
			Priority: func(sig signals.Signals) float64 {
				return 60 + riskBoost(sig)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -20,
				belief.PatternD: -10,
				belief.PatternF: 10,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "This action may be hard to undo and no constraints or context were stated. Spell out what could go wrong before proceeding."
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("irreversible action at %s risk with no preparation", sig.TaskRiskLevel)
			},
		},
		{
			ID:            "mr_over_reliance",
			Name:          "Over-Reliance Warning",
			BaseUrgency:   UrgencyRemind,
			Unconditional: true,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.AIRelianceDegree >= 3 && sig.IterationCount == 0
			},
			Priority: func(signals.Signals) float64 { return 75 },
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "You are delegating everything without reworking any output yourself. Try revising one result on your own before the next request."
			},
			Reason: func(sig signals.Signals) string {
				return "maximum reliance with zero independent iteration"
			},
		},
		{
			ID:            "mr_unverified_streak",
			Name:          "Unverified Output Streak",
			BaseUrgency:   UrgencyEnforce,
			Unconditional: true,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.UnverifiedConsecutive >= 4 && !sig.QualityCheck
			},
			Priority: func(signals.Signals) float64 { return 80 },
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return fmt.Sprintf("%d consecutive outputs accepted without any check. Verify at least one before continuing.", sig.UnverifiedConsecutive)
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("%d consecutive unverified outputs", sig.UnverifiedConsecutive)
			},
		},
		{
			ID:          "mr_agency_reminder",
			Name:        "Agency Reminder",
			BaseUrgency: UrgencyObserve,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.AIRelianceDegree >= 2 && sig.ReflectionDepth == 0
			},
			Priority: func(sig signals.Signals) float64 {
				return 30 + 5*float64(sig.AIRelianceDegree)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -100,
				belief.PatternD: -30,
				belief.PatternE: -20,
				belief.PatternF: 15,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "What would your own first attempt look like? Sketching it before asking keeps your judgment in the loop."
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("reliance %d with no reflection", sig.AIRelianceDegree)
			},
		},
		{
			ID:          "mr_input_prompt",
			Name:        "Input Enhancement Prompt",
			BaseUrgency: UrgencyRemind,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.TaskComplexity <= 1 && sig.GoalClarity <= 1 && sig.MessageIndex >= 1
			},
			Priority: func(sig signals.Signals) float64 {
				return 32 + 3*float64(2-sig.GoalClarity)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -100,
				belief.PatternB: -20,
				belief.PatternC: 5,
				belief.PatternD: -20,
				belief.PatternE: -20,
				belief.PatternF: 10,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "Short, goal-free requests tend to get generic answers. Stating your goal and one constraint usually helps."
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("complexity %d and goal clarity %d", sig.TaskComplexity, sig.GoalClarity)
			},
		},
		{
			ID:          "mr_reflection_prompt",
			Name:        "Reflection Prompt",
			BaseUrgency: UrgencyObserve,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return !sig.OutputEvaluation && sig.MessageIndex >= 3
			},
			Priority: func(sig signals.Signals) float64 {
				return 30 + 2*float64(3-sig.ReflectionDepth)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternA: -10,
				belief.PatternD: -20,
				belief.PatternE: -100,
				belief.PatternF: 10,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "Several answers in, none judged yet. Was the last one actually good? Saying why sharpens the next request."
			},
			Reason: func(sig signals.Signals) string {
				return "no output evaluation after multiple turns"
			},
		},
		{
			ID:          "mr_trust_calibration",
			Name:        "Trust Calibration Nudge",
			BaseUrgency: UrgencyRemind,
			Trigger: func(sig signals.Signals, _ belief.Belief) bool {
				return sig.TrustScore >= 0.8 && !sig.VerificationAttempted
			},
			Priority: func(sig signals.Signals) float64 {
				return 40 + 20*(sig.TrustScore-0.8)
			},
			Modifiers: map[belief.Pattern]float64{
				belief.PatternD: -100,
				belief.PatternA: -15,
				belief.PatternF: 10,
			},
			Message: func(sig signals.Signals, p belief.Pattern) string {
				return "High trust without spot checks drifts into blind trust. Pick one claim from the last answer and verify it externally."
			},
			Reason: func(sig signals.Signals) string {
				return fmt.Sprintf("trust score %.2f without verification", sig.TrustScore)
			},
		},
	}
}

// #endregion catalog
