package signals

import (
	"strings"
	"testing"
)

func turn(user string) Turn {
	return Turn{UserText: user}
}

func historyOf(texts ...string) []Turn {
	var out []Turn
	for _, text := range texts {
		out = append(out, Turn{UserText: text, AssistantText: "ok"})
	}
	return out
}

func TestExtractEmptyTextYieldsZeroVector(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	sig := e.Extract(turn("   "), nil)
	if sig.TaskDecomposition != 0 || sig.GoalClarity != 0 || sig.MessageIndex != 0 {
		t.Fatalf("expected zero vector, got %+v", sig)
	}
	if sig.TaskRiskLevel != RiskLow {
		t.Fatalf("empty turn risk = %s, want low", sig.TaskRiskLevel)
	}
}

func TestDecompositionScoring(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	full := e.Extract(turn("step 1: first outline the essay, then draft it, next revise"), nil)
	if full.TaskDecomposition != 3 {
		t.Fatalf("structured multi-keyword text = %d, want 3", full.TaskDecomposition)
	}

	partial := e.Extract(turn("first do the outline, then the draft"), nil)
	if partial.TaskDecomposition != 2 {
		t.Fatalf("two keywords = %d, want 2", partial.TaskDecomposition)
	}

	weak := e.Extract(turn("ok then we continue"), nil)
	if weak.TaskDecomposition != 1 {
		t.Fatalf("one keyword = %d, want 1", weak.TaskDecomposition)
	}

	none := e.Extract(turn("hello there"), nil)
	if none.TaskDecomposition != 0 {
		t.Fatalf("no keywords = %d, want 0", none.TaskDecomposition)
	}
}

func TestGoalClarityWithMeasurableTarget(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	sig := e.Extract(turn("i want to achieve 95% accuracy on this benchmark"), nil)
	if sig.GoalClarity != 3 {
		t.Fatalf("measurable goal with keywords = %d, want 3", sig.GoalClarity)
	}
}

func TestPreparationTags(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	sig := e.Extract(turn("you are a reviewer. background: a legal memo. don't exceed one page"), nil)
	want := map[string]bool{"role_defined": true, "context_provided": true, "constraints_stated": true}
	if len(sig.PreparationActions) != 3 {
		t.Fatalf("preparation tags = %v, want 3 tags", sig.PreparationActions)
	}
	for _, tag := range sig.PreparationActions {
		if !want[tag] {
			t.Fatalf("unexpected tag %q", tag)
		}
	}
}

func TestRelianceDegreePrecedence(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	// Low-reliance phrasing wins even when high-reliance phrasing co-occurs.
	both := e.Extract(turn("do it for me, or actually let me try it first"), nil)
	if both.AIRelianceDegree != 0 {
		t.Fatalf("low+high text reliance = %d, want 0", both.AIRelianceDegree)
	}

	high := e.Extract(turn("just give me the answer, write the whole thing"), nil)
	if high.AIRelianceDegree != 3 {
		t.Fatalf("high text reliance = %d, want 3", high.AIRelianceDegree)
	}

	neutral := e.Extract(turn("what is the boiling point of water"), nil)
	if neutral.AIRelianceDegree != 1 {
		t.Fatalf("neutral text reliance = %d, want 1", neutral.AIRelianceDegree)
	}
}

func TestRiskLevels(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	critical := e.Extract(turn("run this against the production database"), nil)
	if critical.TaskRiskLevel != RiskCritical {
		t.Fatalf("production task risk = %s, want critical", critical.TaskRiskLevel)
	}

	high := e.Extract(turn("help me deploy the new version"), nil)
	if high.TaskRiskLevel != RiskHigh {
		t.Fatalf("deploy task risk = %s, want high", high.TaskRiskLevel)
	}

	irreversible := e.Extract(turn("overwrite the old file with this"), nil)
	if !irreversible.IrreversibleAction {
		t.Fatal("overwrite should flag irreversible")
	}
	if irreversible.TaskRiskLevel != RiskHigh {
		t.Fatalf("irreversible action risk = %s, want high", irreversible.TaskRiskLevel)
	}

	low := e.Extract(turn("what rhymes with orange"), nil)
	if low.TaskRiskLevel != RiskLow {
		t.Fatalf("benign task risk = %s, want low", low.TaskRiskLevel)
	}
}

func TestUnverifiedStreak(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	hist := historyOf("write a poem", "now a song", "one more")
	sig := e.Extract(turn("and a haiku"), hist)
	if sig.UnverifiedConsecutive != 4 {
		t.Fatalf("streak = %d, want 4", sig.UnverifiedConsecutive)
	}

	verified := e.Extract(turn("can you verify that last claim"), hist)
	if verified.UnverifiedConsecutive != 0 {
		t.Fatalf("verifying turn streak = %d, want 0", verified.UnverifiedConsecutive)
	}

	broken := e.Extract(turn("and a haiku"), historyOf("please verify this", "ok thanks"))
	if broken.UnverifiedConsecutive != 2 {
		t.Fatalf("streak after verified prior = %d, want 2", broken.UnverifiedConsecutive)
	}
}

func TestIterationCountFromHistory(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	hist := historyOf("write a summary", "please revise the tone", "now modify the ending")
	sig := e.Extract(turn("looks good"), hist)
	if sig.IterationCount != 2 {
		t.Fatalf("iteration count = %d, want 2", sig.IterationCount)
	}
}

func TestContextAwarenessNeedsHistory(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	opening := e.Extract(turn("as mentioned earlier, review the plan"), nil)
	if opening.ContextAwareness != 0 {
		t.Fatalf("first turn context awareness = %d, want 0", opening.ContextAwareness)
	}

	later := e.Extract(turn("as mentioned earlier, review the plan"), historyOf("hi"))
	if later.ContextAwareness == 0 {
		t.Fatal("context keywords with history should score above 0")
	}
}

func TestTrustScoreOrdering(t *testing.T) {
	e := NewExtractor(DefaultLexicon())

	delegating := e.Extract(turn("just give me the answer"), nil)
	skeptical := e.Extract(turn("are you sure? i'll verify the source myself"), nil)

	if delegating.TrustScore >= skeptical.TrustScore {
		t.Fatalf("delegating trust %f should be below skeptical trust %f",
			delegating.TrustScore, skeptical.TrustScore)
	}
	if skeptical.TrustScore > 1 || delegating.TrustScore < 0 {
		t.Fatal("trust score out of [0,1]")
	}
}

func TestTrustChangeAgainstPriorTurn(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	sig := e.Extract(turn("are you sure about that? i'll verify"), historyOf("just give me the answer"))
	if sig.TrustChange <= 0 {
		t.Fatalf("trust change = %f, want positive", sig.TrustChange)
	}
}

func TestComplexityClampedAtThree(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	text := "step 1: first break down the migration. then we want to achieve 99% uptime. the plan is " +
		strings.Repeat("detail ", 30)
	sig := e.Extract(turn(text), nil)
	if sig.TaskComplexity != 3 {
		t.Fatalf("complexity = %d, want 3", sig.TaskComplexity)
	}
}

func TestTurnCounters(t *testing.T) {
	e := NewExtractor(DefaultLexicon())
	hist := historyOf("one", "two")
	sig := e.Extract(turn("three"), hist)
	if sig.MessageIndex != 3 {
		t.Fatalf("message index = %d, want 3", sig.MessageIndex)
	}
	if sig.SessionDurationTurns != 3 {
		t.Fatalf("session duration = %d, want 3", sig.SessionDurationTurns)
	}
}

func TestDimensionsProjection(t *testing.T) {
	sig := Signals{
		TaskDecomposition:     2,
		StrategyMentioned:     true,
		PreparationActions:    []string{"a", "b", "c", "d"},
		VerificationAttempted: false,
		IterationCount:        5,
		TrustCalibration:      []string{"skepticism"},
	}
	dims := sig.Dimensions()
	if dims[DimP1] != 2 {
		t.Fatalf("p1 = %d, want 2", dims[DimP1])
	}
	if dims[DimP3] != 3 {
		t.Fatalf("true bool should map to 3, got %d", dims[DimP3])
	}
	if dims[DimP4] != 3 {
		t.Fatalf("tag list should cap at 3, got %d", dims[DimP4])
	}
	if dims[DimM1] != 0 {
		t.Fatalf("false bool should map to 0, got %d", dims[DimM1])
	}
	if dims[DimR1] != 3 {
		t.Fatalf("iteration count should cap at 3, got %d", dims[DimR1])
	}
	if dims[DimR2] != 1 {
		t.Fatalf("r2 = %d, want 1", dims[DimR2])
	}
	if len(dims) != len(DimensionKeys) {
		t.Fatalf("dims has %d keys, want %d", len(dims), len(DimensionKeys))
	}
}
