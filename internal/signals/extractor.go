package signals

import "strings"

// #region extractor

// Extractor computes the behavioral signal vector from conversation turns.
// Pure lexical scanning, no I/O.
type Extractor struct {
	lex Lexicon
}

// NewExtractor creates an Extractor with the given lexicon.
func NewExtractor(lex Lexicon) *Extractor {
	return &Extractor{lex: lex}
}

// referenceLength normalizes message length; inputs at or above this many
// characters count as maximally detailed.
const referenceLength = 200

// #endregion extractor

// #region extract

// Extract computes all signals for the current turn given the prior turns.
// Empty user text yields a zero vector; this never fails.
func (e *Extractor) Extract(current Turn, history []Turn) Signals {
	text := strings.TrimSpace(current.UserText)
	if text == "" {
		return Signals{TaskRiskLevel: RiskLow}
	}
	lower := strings.ToLower(text)
	priorUser := userTexts(history)

	sig := Signals{
		TaskDecomposition:  e.scoreDecomposition(lower),
		GoalClarity:        e.scoreGoalClarity(lower),
		StrategyMentioned:  containsAny(lower, e.lex.Strategy),
		PreparationActions: e.preparationTags(lower),

		VerificationAttempted: containsAny(lower, e.lex.Verification),
		QualityCheck:          containsAny(lower, e.lex.QualityCheck),
		ContextAwareness:      e.scoreContextAwareness(lower, len(history)),

		ReflectionDepth:     e.scoreReflection(lower),
		CapabilityAwareness: containsAny(lower, e.lex.Capability),

		IterationCount:   e.countIterations(priorUser),
		TrustCalibration: e.trustTags(lower),

		IrreversibleAction: containsAny(lower, e.lex.Irreversible),

		MessageIndex:         len(priorUser) + 1,
		SessionDurationTurns: len(history) + 1,
	}

	// Output evaluation needs a prior assistant output to evaluate.
	sig.OutputEvaluation = len(history) > 0 && containsAny(lower, e.lex.Evaluation)

	sig.TaskComplexity = e.scoreComplexity(lower, sig)
	sig.AIRelianceDegree = e.relianceDegree(lower)
	sig.TaskRiskLevel = e.riskLevel(lower, sig.IrreversibleAction)

	sig.TrustScore = e.trustScore(lower)
	if last := lastUserText(history); last != "" {
		sig.TrustChange = sig.TrustScore - e.trustScore(strings.ToLower(last))
	}

	sig.UnverifiedConsecutive = e.unverifiedStreak(lower, priorUser)

	return sig
}

// #endregion extract

// #region planning-scores

func (e *Extractor) scoreDecomposition(lower string) int {
	hits := countKeywords(lower, e.lex.Decomposition)
	structural := e.lex.DecompPattern.MatchString(lower)
	switch {
	case hits >= 3 && structural:
		return 3
	case hits >= 2 || structural:
		return 2
	case hits >= 1:
		return 1
	}
	return 0
}

func (e *Extractor) scoreGoalClarity(lower string) int {
	hits := countKeywords(lower, e.lex.Goal)
	measurable := e.lex.MeasurablePattern.MatchString(lower)
	switch {
	case measurable && hits >= 2:
		return 3
	case measurable || hits >= 2:
		return 2
	case hits >= 1:
		return 1
	}
	return 0
}

func (e *Extractor) preparationTags(lower string) []string {
	var tags []string
	if containsAny(lower, e.lex.RolePreparation) {
		tags = append(tags, "role_defined")
	}
	if containsAny(lower, e.lex.ContextPreparation) {
		tags = append(tags, "context_provided")
	}
	if containsAny(lower, e.lex.ConstraintPreparation) {
		tags = append(tags, "constraints_stated")
	}
	return tags
}

// #endregion planning-scores

// #region monitoring-scores

func (e *Extractor) scoreContextAwareness(lower string, historyLen int) int {
	if historyLen == 0 {
		return 0
	}
	hits := countKeywords(lower, e.lex.Context)
	if hits > 3 {
		hits = 3
	}
	return hits
}

// #endregion monitoring-scores

// #region evaluation-scores

func (e *Extractor) scoreReflection(lower string) int {
	hits := countKeywords(lower, e.lex.Reflection)
	if hits > 3 {
		hits = 3
	}
	return hits
}

// #endregion evaluation-scores

// #region regulation-scores

// countIterations counts prior user turns containing refinement vocabulary.
func (e *Extractor) countIterations(priorUser []string) int {
	count := 0
	for _, text := range priorUser {
		if containsAny(strings.ToLower(text), e.lex.Refinement) {
			count++
		}
	}
	return count
}

func (e *Extractor) trustTags(lower string) []string {
	var tags []string
	if containsAny(lower, e.lex.Skepticism) {
		tags = append(tags, "skepticism")
	}
	if containsAny(lower, e.lex.Verification) {
		tags = append(tags, "verification")
	}
	if containsAny(lower, e.lex.Delegation) {
		tags = append(tags, "delegation")
	}
	return tags
}

// #endregion regulation-scores

// #region derived-scalars

// scoreComplexity combines planning indicators with a length-normalized term.
func (e *Extractor) scoreComplexity(lower string, sig Signals) int {
	lengthNorm := float64(len(lower)) / referenceLength
	if lengthNorm > 1 {
		lengthNorm = 1
	}
	raw := 1.5*lengthNorm + 0.5*float64(sig.TaskDecomposition) + 0.5*float64(sig.GoalClarity)
	if sig.StrategyMentioned {
		raw += 0.5
	}
	score := int(raw)
	if score > 3 {
		score = 3
	}
	return score
}

// relianceDegree applies the precedence rule: low-reliance phrasing wins
// outright, then high-reliance phrasing, then a neutral default. The
// high-and-not-low middle tier documented upstream is unreachable because
// the high-reliance branch already returns.
func (e *Extractor) relianceDegree(lower string) int {
	if containsAny(lower, e.lex.LowReliance) {
		return 0
	}
	if containsAny(lower, e.lex.HighReliance) {
		return 3
	}
	if containsAny(lower, e.lex.HighReliance) && !containsAny(lower, e.lex.LowReliance) {
		return 2
	}
	return 1
}

func (e *Extractor) riskLevel(lower string, irreversible bool) RiskLevel {
	if containsAny(lower, e.lex.CriticalRisk) {
		return RiskCritical
	}
	if irreversible || containsAny(lower, e.lex.HighRisk) {
		return RiskHigh
	}
	return RiskLow
}

// trustScore proxies calibrated trust from skepticism and verification
// phrasing minus blanket-delegation phrasing.
func (e *Extractor) trustScore(lower string) float64 {
	score := 0.5
	score += 0.1 * float64(countKeywords(lower, e.lex.Skepticism))
	score += 0.1 * float64(countKeywords(lower, e.lex.Verification))
	if containsAny(lower, e.lex.HighReliance) {
		score -= 0.15
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// unverifiedStreak counts the run of consecutive user turns, ending at the
// current one, that contain no verification language.
func (e *Extractor) unverifiedStreak(currentLower string, priorUser []string) int {
	if containsAny(currentLower, e.lex.Verification) {
		return 0
	}
	streak := 1
	for i := len(priorUser) - 1; i >= 0; i-- {
		if containsAny(strings.ToLower(priorUser[i]), e.lex.Verification) {
			break
		}
		streak++
	}
	return streak
}

// #endregion derived-scalars

// #region helpers

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func countKeywords(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

func userTexts(history []Turn) []string {
	var texts []string
	for _, t := range history {
		if strings.TrimSpace(t.UserText) != "" {
			texts = append(texts, t.UserText)
		}
	}
	return texts
}

func lastUserText(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if strings.TrimSpace(history[i].UserText) != "" {
			return history[i].UserText
		}
	}
	return ""
}

// #endregion helpers
