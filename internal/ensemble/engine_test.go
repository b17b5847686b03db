package ensemble

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/estimator"
	"github.com/danielpatrickdp/mca-engine/internal/history"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// scriptedCcapability returns queued distributions in order, repeating the
// last one when the queue runs out.
type scriptedCapability struct {
	queue []belief.Distribution
	err   error
	calls int
}

func (s *scriptedCapability) Predict(ctx context.Context, sig signals.Signals) (belief.Distribution, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.queue) {
		idx = len(s.queue) - 1
	}
	return s.queue[idx].Clone(), nil
}

type mockRecorder struct {
	recorded chan history.StabilitySnapshot
}

func (m *mockRecorder) RecordStability(ctx context.Context, snap history.StabilitySnapshot) error {
	m.recorded <- snap
	return nil
}

// neutralSig carries no evidence: every dimension zero and reliance at the
// neutral default, so the Bayesian posterior stays put.
func neutralSig() signals.Signals {
	return signals.Signals{AIRelianceDegree: 1}
}

func allMass(p belief.Pattern) belief.Distribution {
	d := make(belief.Distribution)
	d[p] = 1
	return d
}

func newEstimator(t *testing.T, override belief.Distribution) *estimator.Estimator {
	t.Helper()
	est := estimator.New("u1", "s1", estimator.DefaultTable(), nil, estimator.DefaultConfig())
	if err := est.Initialize(context.Background(), override); err != nil {
		t.Fatalf("initialize estimator: %v", err)
	}
	return est
}

func TestEstimateBayesianOnlyWithoutClassifier(t *testing.T) {
	g := New("u1", "s1", newEstimator(t, nil), nil, nil, DefaultConfig())

	hb, err := g.Estimate(context.Background(), signals.Signals{AIRelianceDegree: 3})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if hb.Method != MethodBayesian {
		t.Fatalf("method = %s, want bayesian", hb.Method)
	}
	if hb.Classifier != nil {
		t.Fatal("classifier belief should be absent")
	}
	if hb.TopPattern != belief.PatternF {
		t.Fatalf("top = %s, want F", hb.TopPattern)
	}
}

func TestClassifierFailureFallsBackSilently(t *testing.T) {
	cls := &scriptedCapability{err: errors.New("connection refused")}
	g := New("u1", "s1", newEstimator(t, nil), cls, nil, DefaultConfig())

	hb, err := g.Estimate(context.Background(), neutralSig())
	if err != nil {
		t.Fatalf("classifier failure must not surface: %v", err)
	}
	if hb.Method != MethodBayesian {
		t.Fatalf("method = %s, want bayesian", hb.Method)
	}
	if cls.calls != 1 {
		t.Fatalf("classifier called %d times, want 1", cls.calls)
	}
}

func TestFusionEarlyUninformedWeights(t *testing.T) {
	// A neutral turn keeps the Bayesian posterior uniform, so the fused top-2
	// gap is exactly the classifier weight: 0.5 on an uninformed early turn.
	cls := &scriptedCapability{queue: []belief.Distribution{allMass(belief.PatternF)}}
	g := New("u1", "s1", newEstimator(t, nil), cls, nil, DefaultConfig())

	hb, err := g.Estimate(context.Background(), neutralSig())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if hb.Method != MethodEnsemble {
		t.Fatalf("method = %s, want ensemble", hb.Method)
	}
	if hb.TopPattern != belief.PatternF {
		t.Fatalf("top = %s, want F", hb.TopPattern)
	}
	if hb.Classifier == nil || hb.Classifier.TopPattern != belief.PatternF {
		t.Fatal("classifier sub-estimate should be attached")
	}
	if math.Abs(hb.Confidence-0.5) > 1e-9 {
		t.Fatalf("confidence = %f, want 0.5", hb.Confidence)
	}
	if math.Abs(hb.Distribution.Sum()-1.0) > 1e-6 {
		t.Fatalf("fused distribution sums to %f", hb.Distribution.Sum())
	}
}

func TestFusionInformedPriorShiftsWeightToBayesian(t *testing.T) {
	// An assessment prior drops the early classifier weight from 0.5 to 0.3.
	cls := &scriptedCapability{queue: []belief.Distribution{allMass(belief.PatternF)}}
	g := New("u1", "s1", newEstimator(t, belief.Uniform()), cls, nil, DefaultConfig())

	hb, err := g.Estimate(context.Background(), neutralSig())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if hb.PriorSource != belief.PriorAssessment {
		t.Fatalf("prior source = %s, want assessment", hb.PriorSource)
	}
	if math.Abs(hb.Confidence-0.3) > 1e-9 {
		t.Fatalf("confidence = %f, want 0.3", hb.Confidence)
	}
}

func TestVolatileWindowDiscountsConfidence(t *testing.T) {
	// Alternating classifier verdicts flip the fused top pattern every turn;
	// from the fourth snapshot the window holds three changes.
	cls := &scriptedCapability{queue: []belief.Distribution{
		allMass(belief.PatternA), allMass(belief.PatternF),
		allMass(belief.PatternA), allMass(belief.PatternF),
	}}
	g := New("u1", "s1", newEstimator(t, nil), cls, nil, DefaultConfig())

	var hb HybridBelief
	var err error
	for i := 0; i < 4; i++ {
		hb, err = g.Estimate(context.Background(), neutralSig())
		if err != nil {
			t.Fatalf("estimate %d: %v", i, err)
		}
	}

	if hb.Stability.Verdict != VerdictVolatile {
		t.Fatalf("verdict = %s, want volatile", hb.Stability.Verdict)
	}
	if hb.Stability.IsStable {
		t.Fatal("volatile window should not be stable")
	}
	// Mid-bucket fused gap is 0.4, discounted by exactly 0.8.
	if math.Abs(hb.Confidence-0.32) > 1e-9 {
		t.Fatalf("discounted confidence = %f, want 0.32", hb.Confidence)
	}
}

func TestDecliningConfidenceDetected(t *testing.T) {
	// Strong early verdicts followed by an uncommitted one drop fused
	// confidence by more than the declining threshold.
	cls := &scriptedCapability{queue: []belief.Distribution{
		allMass(belief.PatternF), allMass(belief.PatternF), belief.Uniform(),
	}}
	g := New("u1", "s1", newEstimator(t, nil), cls, nil, DefaultConfig())

	var hb HybridBelief
	var err error
	for i := 0; i < 3; i++ {
		hb, err = g.Estimate(context.Background(), neutralSig())
		if err != nil {
			t.Fatalf("estimate %d: %v", i, err)
		}
	}

	if hb.Stability.Verdict != VerdictDeclining {
		t.Fatalf("verdict = %s, want declining", hb.Stability.Verdict)
	}
	if hb.Stability.IsStable {
		t.Fatal("declining window should not be stable")
	}
}

func TestFewSnapshotsCountAsStable(t *testing.T) {
	g := New("u1", "s1", newEstimator(t, nil), nil, nil, DefaultConfig())

	hb, err := g.Estimate(context.Background(), neutralSig())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if hb.Stability.Verdict != VerdictInsufficient {
		t.Fatalf("verdict = %s, want insufficient", hb.Stability.Verdict)
	}
	if !hb.Stability.IsStable {
		t.Fatal("insufficient snapshots should not discount confidence")
	}
}

func TestWindowIsBounded(t *testing.T) {
	cls := &scriptedCapability{queue: []belief.Distribution{allMass(belief.PatternF)}}
	g := New("u1", "s1", newEstimator(t, nil), cls, nil, DefaultConfig())

	var hb HybridBelief
	var err error
	for i := 0; i < 15; i++ {
		hb, err = g.Estimate(context.Background(), neutralSig())
		if err != nil {
			t.Fatalf("estimate %d: %v", i, err)
		}
	}
	if hb.Stability.Snapshots != DefaultConfig().WindowSize {
		t.Fatalf("window holds %d snapshots, want %d", hb.Stability.Snapshots, DefaultConfig().WindowSize)
	}
	if hb.Stability.Verdict != VerdictStable {
		t.Fatalf("constant verdicts should be stable, got %s", hb.Stability.Verdict)
	}
}

func TestStabilitySnapshotRecordedAsync(t *testing.T) {
	rec := &mockRecorder{recorded: make(chan history.StabilitySnapshot, 1)}
	g := New("u9", "s9", newEstimator(t, nil), nil, rec, DefaultConfig())

	if _, err := g.Estimate(context.Background(), signals.Signals{AIRelianceDegree: 3}); err != nil {
		t.Fatalf("estimate: %v", err)
	}

	select {
	case snap := <-rec.recorded:
		if snap.UserID != "u9" || snap.SessionID != "s9" {
			t.Fatalf("snapshot ids = %s/%s", snap.UserID, snap.SessionID)
		}
		if snap.Verdict != string(VerdictInsufficient) {
			t.Fatalf("verdict = %s, want insufficient", snap.Verdict)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stability snapshot was never recorded")
	}
}

func TestReturnedEvidenceImmutableAcrossTurns(t *testing.T) {
	// Force the discount append on every turn so the Bayesian-only path
	// extends the evidence trail each Estimate.
	cfg := DefaultConfig()
	cfg.MinSnapshots = 1
	cfg.DecliningDrop = -1
	g := New("u1", "s1", newEstimator(t, nil), nil, nil, cfg)

	var retainedBelief HybridBelief
	var err error
	for i := 0; i < 2; i++ {
		retainedBelief, err = g.Estimate(context.Background(), neutralSig())
		if err != nil {
			t.Fatalf("estimate %d: %v", i, err)
		}
	}
	if retainedBelief.Stability.IsStable {
		t.Fatal("config should mark every turn unstable")
	}
	retained := retainedBelief.Evidence[len(retainedBelief.Evidence)-1]

	if _, err := g.Estimate(context.Background(), neutralSig()); err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if got := retainedBelief.Evidence[len(retainedBelief.Evidence)-1]; got != retained {
		t.Fatalf("a later turn rewrote retained evidence: %q -> %q", retained, got)
	}
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		turn int
		want TurnBucket
	}{
		{1, BucketEarly}, {2, BucketEarly},
		{3, BucketMid}, {4, BucketMid},
		{5, BucketLate}, {12, BucketLate},
	}
	for _, c := range cases {
		if got := bucketFor(c.turn); got != c.want {
			t.Fatalf("bucketFor(%d) = %s, want %s", c.turn, got, c.want)
		}
	}
}
