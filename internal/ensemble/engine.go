package ensemble

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/classifier"
	"github.com/danielpatrickdp/mca-engine/internal/estimator"
	"github.com/danielpatrickdp/mca-engine/internal/history"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region config

// Config tunes fusion and stability tracking.
type Config struct {
	WindowSize          int           // bounded snapshot buffer length
	InstabilityDiscount float64       // confidence multiplier when unstable
	MinSnapshots        int           // snapshots required for a verdict
	VolatileChanges     int           // top-pattern changes in window => volatile
	DecliningDrop       float64       // confidence drop across window => declining
	ClassifierTimeout   time.Duration // bound on the external classifier call
	Weights             WeightSchedule
	RecordTimeout       time.Duration
}

// DefaultConfig returns the standard ensemble configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:          10,
		InstabilityDiscount: 0.8,
		MinSnapshots:        3,
		VolatileChanges:     3,
		DecliningDrop:       0.15,
		ClassifierTimeout:   2 * time.Second,
		Weights:             DefaultWeightSchedule(),
		RecordTimeout:       5 * time.Second,
	}
}

// #endregion config

// #region recorder

// StabilityRecorder persists stability snapshots. May be nil.
type StabilityRecorder interface {
	RecordStability(ctx context.Context, snap history.StabilitySnapshot) error
}

// #endregion recorder

// #region engine

// Engine wraps one session's Bayesian estimator and an optional external
// classifier capability. Owned by exactly one session; never share across
// concurrent turns.
type Engine struct {
	userID    string
	sessionID string
	est       *estimator.Estimator
	cls       classifier.Capability // nil = Bayesian-only
	recorder  StabilityRecorder     // nil = no snapshot persistence
	cfg       Config
	window    []snapshot
}

// New creates an engine around the given estimator. cls and recorder may be nil.
func New(userID, sessionID string, est *estimator.Estimator, cls classifier.Capability, recorder StabilityRecorder, cfg Config) *Engine {
	return &Engine{
		userID:    userID,
		sessionID: sessionID,
		est:       est,
		cls:       cls,
		recorder:  recorder,
		cfg:       cfg,
	}
}

// #endregion engine

// #region estimate

// Estimate runs the Bayesian update, attempts the classifier, fuses the two
// when both succeed, then applies the stability discount. Classifier failures
// of any kind fall back silently to the Bayesian-only estimate.
func (g *Engine) Estimate(ctx context.Context, sig signals.Signals) (HybridBelief, error) {
	bayes, err := g.est.Update(ctx, sig)
	if err != nil {
		return HybridBelief{}, err
	}

	out := HybridBelief{
		Belief:   bayes,
		Method:   MethodBayesian,
		Bayesian: bayes,
	}

	if clsDist := g.tryClassifier(ctx, sig); clsDist != nil {
		clsBelief := belief.FromDistribution(clsDist, bayes.PriorSource, bayes.TurnCount, nil)
		out.Classifier = &clsBelief

		w := g.fusionWeights(bayes.TurnCount)
		fused := make(belief.Distribution, len(belief.Patterns))
		for _, p := range belief.Patterns {
			fused[p] = w.Bayesian*bayes.Distribution[p] + w.Classifier*clsDist[p]
		}
		fused.Normalize()

		evidence := append(append([]string{}, bayes.Evidence...),
			fmt.Sprintf("classifier: top=%s", clsBelief.TopPattern),
			fmt.Sprintf("fusion: bayes=%.2f classifier=%.2f bucket=%s informed=%v",
				w.Bayesian, w.Classifier, bucketFor(bayes.TurnCount), g.est.PriorInformed()))

		out.Belief = belief.FromDistribution(fused, bayes.PriorSource, bayes.TurnCount, evidence)
		out.Belief.NeedMoreData = bayes.NeedMoreData
		out.Method = MethodEnsemble
	}

	g.pushSnapshot(out.TopPattern, out.Confidence)
	out.Stability = g.stability()
	if !out.Stability.IsStable {
		out.Confidence *= g.cfg.InstabilityDiscount
		// Copy before appending: the Bayesian-only path shares the
		// estimator's evidence slice, and the next Update appends to it.
		out.Evidence = append(append([]string{}, out.Evidence...),
			fmt.Sprintf("stability: %s, confidence discounted x%.2f", out.Stability.Verdict, g.cfg.InstabilityDiscount))
	}

	g.recordSnapshot(out)
	return out, nil
}

// tryClassifier calls the capability under a timeout. Returns nil on any
// failure; the caller treats nil as "no classifier".
func (g *Engine) tryClassifier(ctx context.Context, sig signals.Signals) belief.Distribution {
	if g.cls == nil {
		return nil
	}
	clsCtx, cancel := context.WithTimeout(ctx, g.cfg.ClassifierTimeout)
	defer cancel()
	dist, err := g.cls.Predict(clsCtx, sig)
	if err != nil {
		log.Printf("[ENSEMBLE] classifier unavailable, bayesian only: %v", err)
		return nil
	}
	return dist
}

func (g *Engine) fusionWeights(turn int) Weights {
	bucket := bucketFor(turn)
	if byInformed, ok := g.cfg.Weights[bucket]; ok {
		if w, ok := byInformed[g.est.PriorInformed()]; ok {
			return w
		}
	}
	return Weights{Bayesian: 0.6, Classifier: 0.4}
}

// #endregion estimate

// #region stability-window

func (g *Engine) pushSnapshot(p belief.Pattern, conf float64) {
	g.window = append(g.window, snapshot{pattern: p, confidence: conf, at: time.Now().UTC()})
	if len(g.window) > g.cfg.WindowSize {
		g.window = g.window[len(g.window)-g.cfg.WindowSize:]
	}
}

// stability derives the trend verdict from the bounded window. Too few
// snapshots counts as stable: an early estimate is noisy, not oscillating.
func (g *Engine) stability() Stability {
	n := len(g.window)
	if n < g.cfg.MinSnapshots {
		return Stability{Verdict: VerdictInsufficient, IsStable: true, Snapshots: n}
	}

	changes := 0
	for i := 1; i < n; i++ {
		if g.window[i].pattern != g.window[i-1].pattern {
			changes++
		}
	}
	if changes >= g.cfg.VolatileChanges {
		return Stability{Verdict: VerdictVolatile, IsStable: false, Snapshots: n}
	}

	if g.window[0].confidence-g.window[n-1].confidence > g.cfg.DecliningDrop {
		return Stability{Verdict: VerdictDeclining, IsStable: false, Snapshots: n}
	}

	return Stability{Verdict: VerdictStable, IsStable: true, Snapshots: n}
}

// recordSnapshot persists the stability verdict asynchronously, best-effort.
func (g *Engine) recordSnapshot(hb HybridBelief) {
	if g.recorder == nil {
		return
	}
	snap := history.StabilitySnapshot{
		UserID:     g.userID,
		SessionID:  g.sessionID,
		Pattern:    hb.TopPattern,
		Confidence: hb.Confidence,
		Verdict:    string(hb.Stability.Verdict),
		CreatedAt:  time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.cfg.RecordTimeout)
		defer cancel()
		if err := g.recorder.RecordStability(ctx, snap); err != nil {
			log.Printf("[ENSEMBLE] record stability: %v", err)
		}
	}()
}

// #endregion stability-window

// #region accessors

// Current returns the estimator's latest belief without advancing state.
func (g *Engine) Current() belief.Belief {
	return g.est.Current()
}

// TurnCount returns the number of updates applied so far.
func (g *Engine) TurnCount() int {
	return g.est.TurnCount()
}

// #endregion accessors
