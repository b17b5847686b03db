package estimator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/history"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region config

// Config tunes prior construction and the need-more-data heuristic.
type Config struct {
	HistoryBlend           float64       // weight of the historical prior vs uniform
	ZeroFloor              float64       // substituted for unobserved archetypes before normalizing
	MinHistoryDetections   int           // detections required before the historical prior is used
	HistoryLookback        time.Duration // recency window for the detection query
	HistoryLimit           int           // row cap for the detection query
	NeedMoreDataConfidence float64
	NeedMoreDataTurns      int
	LikelihoodFloor        float64 // minimum per-dimension factor
	RecordTimeout          time.Duration
}

// DefaultConfig returns the standard estimator configuration.
func DefaultConfig() Config {
	return Config{
		HistoryBlend:           0.8,
		ZeroFloor:              0.01,
		MinHistoryDetections:   3,
		HistoryLookback:        30 * 24 * time.Hour,
		HistoryLimit:           50,
		NeedMoreDataConfidence: 0.3,
		NeedMoreDataTurns:      5,
		LikelihoodFloor:        0.05,
		RecordTimeout:          5 * time.Second,
	}
}

// #endregion config

// #region store-interface

// Store is the subset of the history store the estimator depends on.
// May be nil: prior construction skips history and detection logging is off.
type Store interface {
	RecentDetections(ctx context.Context, userID string, since time.Time, limit int) ([]history.Detection, error)
	RecordDetection(ctx context.Context, d history.Detection) error
}

// #endregion store-interface

// #region estimator

// ErrNotInitialized is returned by Update before Initialize has completed.
var ErrNotInitialized = errors.New("estimator not initialized")

// Estimator maintains one session's belief over the six archetypes.
// Updates are order-dependent: the posterior becomes the next turn's prior,
// so turns for a session must be applied in arrival order by a single caller.
type Estimator struct {
	userID    string
	sessionID string
	cfg       Config
	table     LikelihoodTable
	store     Store

	initialized bool
	turnCount   int
	priorSource belief.PriorSource
	current     belief.Belief
}

// New creates an estimator for one (userID, sessionID) pair.
// Initialize must complete before the first Update.
func New(userID, sessionID string, table LikelihoodTable, store Store, cfg Config) *Estimator {
	return &Estimator{
		userID:    userID,
		sessionID: sessionID,
		cfg:       cfg,
		table:     table,
		store:     store,
	}
}

// #endregion estimator

// #region initialize

// Initialize resolves the prior with three-way precedence: an explicit
// assessment-derived override, then the cross-session historical prior, then
// uniform. History lookup failures degrade to uniform and are never returned.
func (e *Estimator) Initialize(ctx context.Context, override belief.Distribution) error {
	if e.initialized {
		return fmt.Errorf("estimator for session %s already initialized", e.sessionID)
	}

	prior := belief.Uniform()
	source := belief.PriorUniform

	switch {
	case override != nil:
		prior = override.Clone()
		prior.Normalize()
		source = belief.PriorAssessment
	case e.store != nil:
		since := time.Now().Add(-e.cfg.HistoryLookback)
		detections, err := e.store.RecentDetections(ctx, e.userID, since, e.cfg.HistoryLimit)
		if err != nil {
			log.Printf("[EST] history lookup failed, using uniform prior: %v", err)
		} else if len(detections) >= e.cfg.MinHistoryDetections {
			prior = e.historicalPrior(detections)
			source = belief.PriorHistory
		}
	}

	e.current = belief.FromDistribution(prior, source, 0, []string{
		fmt.Sprintf("prior: source=%s", source),
	})
	e.current.NeedMoreData = true
	e.priorSource = source
	e.initialized = true
	return nil
}

// historicalPrior weights each archetype by its detection share times its
// average confidence, floors unobserved archetypes, then blends with uniform
// so a thin history cannot produce a brittle prior.
func (e *Estimator) historicalPrior(detections []history.Detection) belief.Distribution {
	counts := make(map[belief.Pattern]int)
	confSums := make(map[belief.Pattern]float64)
	for _, d := range detections {
		counts[d.Pattern]++
		confSums[d.Pattern] += d.Confidence
	}

	total := float64(len(detections))
	weighted := make(belief.Distribution, len(belief.Patterns))
	for _, p := range belief.Patterns {
		if counts[p] == 0 {
			weighted[p] = e.cfg.ZeroFloor
			continue
		}
		share := float64(counts[p]) / total
		avgConf := confSums[p] / float64(counts[p])
		weighted[p] = share * avgConf
	}
	weighted.Normalize()

	uniform := 1.0 / float64(len(belief.Patterns))
	for _, p := range belief.Patterns {
		weighted[p] = e.cfg.HistoryBlend*weighted[p] + (1-e.cfg.HistoryBlend)*uniform
	}
	weighted.Normalize()
	return weighted
}

// #endregion initialize

// #region update

// Update revises the belief from the signal vector: posterior(p) is
// proportional to prior(p) times the product of per-dimension likelihood
// factors. The posterior becomes the prior for the next turn. Detection
// logging is fire-and-forget; persistence failures never surface here.
func (e *Estimator) Update(ctx context.Context, sig signals.Signals) (belief.Belief, error) {
	if !e.initialized {
		return belief.Belief{}, ErrNotInitialized
	}

	dims := sig.Dimensions()
	dims[DimReliance] = sig.AIRelianceDegree

	posterior := make(belief.Distribution, len(belief.Patterns))
	for _, p := range belief.Patterns {
		score := e.current.Distribution[p]
		for _, dim := range likelihoodDims {
			score *= e.likelihoodFactor(p, dim, dims[dim])
		}
		posterior[p] = score
	}
	posterior.Normalize()

	e.turnCount++
	top, topProb := posterior.Top()
	evidence := append(e.current.Evidence,
		fmt.Sprintf("turn %d: top=%s P=%.3f conf=%.3f", e.turnCount, top, topProb, posterior.Confidence()))

	next := belief.FromDistribution(posterior, e.priorSource, e.turnCount, evidence)
	next.NeedMoreData = next.Confidence < e.cfg.NeedMoreDataConfidence && e.turnCount < e.cfg.NeedMoreDataTurns
	e.current = next

	e.recordDetection(next)
	return next, nil
}

// likelihoodFactor maps one dimension's value to a multiplicative factor.
// Monotonic in the value when the weight is positive, floored to keep the
// product strictly positive. Reliance is centered on the neutral default so
// an uncommitted turn moves nothing.
func (e *Estimator) likelihoodFactor(p belief.Pattern, dim signals.DimensionKey, value int) float64 {
	w := e.table.Weights[p][dim]
	v := float64(value)
	if dim == DimReliance {
		v -= relianceNeutral
	}
	factor := 1 + w*v/3.0
	if factor < e.cfg.LikelihoodFloor {
		factor = e.cfg.LikelihoodFloor
	}
	return factor
}

// recordDetection logs the detection asynchronously. Best-effort: estimation
// must never fail because persistence failed.
func (e *Estimator) recordDetection(b belief.Belief) {
	if e.store == nil {
		return
	}
	d := history.Detection{
		UserID:       e.userID,
		SessionID:    e.sessionID,
		Pattern:      b.TopPattern,
		Confidence:   b.Confidence,
		Distribution: b.Distribution.Clone(),
		CreatedAt:    time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RecordTimeout)
		defer cancel()
		if err := e.store.RecordDetection(ctx, d); err != nil {
			log.Printf("[EST] record detection: %v", err)
		}
	}()
}

// #endregion update

// #region accessors

// Current returns the latest belief without advancing state.
func (e *Estimator) Current() belief.Belief {
	return e.current
}

// PriorInformed reports whether the prior came from assessment or history.
func (e *Estimator) PriorInformed() bool {
	return e.priorSource.Informed()
}

// TurnCount returns the number of updates applied so far.
func (e *Estimator) TurnCount() int {
	return e.turnCount
}

// SessionID returns the session this estimator is bound to.
func (e *Estimator) SessionID() string {
	return e.sessionID
}

// #endregion accessors
