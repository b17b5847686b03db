package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danielpatrickdp/mca-engine/internal/activator"
	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/classifier"
	"github.com/danielpatrickdp/mca-engine/internal/ensemble"
	"github.com/danielpatrickdp/mca-engine/internal/estimator"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region errors

// ErrNoUserTurn is returned when no provided turn contains user text.
var ErrNoUserTurn = errors.New("no turn with user text")

// ErrUnknownSession is returned by read/reset calls for sessions that were
// never analyzed.
var ErrUnknownSession = errors.New("unknown session")

// #endregion errors

// #region result

// Result is the per-turn pipeline output.
type Result struct {
	Signals     signals.Signals       `json:"signals"`
	Pattern     ensemble.HybridBelief `json:"pattern"`
	ActiveMRs   []activator.Active    `json:"activeMRs"`
	TurnCount   int                   `json:"turnCount"`
	IsHighRiskF bool                  `json:"isHighRiskF"`
}

// #endregion result

// #region pipeline

// Pipeline owns one session's mutable pipeline state: the belief engine and
// the fatigue set. The mutex enforces strict arrival-order processing; the
// Bayesian update is order-dependent, so concurrent turns for one session
// must serialize here.
type Pipeline struct {
	mu        sync.Mutex
	sessionID string
	userID    string

	extractor *signals.Extractor
	engine    *ensemble.Engine
	activator *activator.Activator
	fatigue   *activator.Fatigue
}

// Analyze runs one turn through extract, estimate, and activate.
func (p *Pipeline) Analyze(ctx context.Context, turns []signals.Turn, currentIdx int) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, err := selectTurn(turns, currentIdx)
	if err != nil {
		return Result{}, err
	}
	current := turns[idx]
	history := turns[:idx]

	turnCount := 0
	for _, t := range turns[:idx+1] {
		if strings.TrimSpace(t.UserText) != "" {
			turnCount++
		}
	}

	sig := p.extractor.Extract(current, history)

	hb, err := p.engine.Estimate(ctx, sig)
	if err != nil {
		return Result{}, fmt.Errorf("estimate session %s: %w", p.sessionID, err)
	}

	active := p.activator.Determine(sig, hb.Belief, turnCount, p.fatigue)

	return Result{
		Signals:     sig,
		Pattern:     hb,
		ActiveMRs:   active,
		TurnCount:   turnCount,
		IsHighRiskF: isHighRiskF(sig, hb.TopPattern),
	}, nil
}

// Current returns the session's belief without advancing state.
func (p *Pipeline) Current() belief.Belief {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Current()
}

// selectTurn picks the requested index when valid, otherwise the most recent
// turn containing user text.
func selectTurn(turns []signals.Turn, currentIdx int) (int, error) {
	if currentIdx >= 0 && currentIdx < len(turns) && strings.TrimSpace(turns[currentIdx].UserText) != "" {
		return currentIdx, nil
	}
	for i := len(turns) - 1; i >= 0; i-- {
		if strings.TrimSpace(turns[i].UserText) != "" {
			return i, nil
		}
	}
	return 0, ErrNoUserTurn
}

// isHighRiskF flags the over-reliance archetype combined with a risky or
// fully delegated turn.
func isHighRiskF(sig signals.Signals, top belief.Pattern) bool {
	if top != belief.PatternF {
		return false
	}
	return sig.TaskRiskLevel != signals.RiskLow || sig.AIRelianceDegree >= 3
}

// #endregion pipeline

// #region manager-config

// Config bundles the per-stage configurations a manager hands to new sessions.
type Config struct {
	Estimator estimator.Config
	Ensemble  ensemble.Config
	Activator activator.Config
}

// DefaultConfig returns the standard configuration for all stages.
func DefaultConfig() Config {
	return Config{
		Estimator: estimator.DefaultConfig(),
		Ensemble:  ensemble.DefaultConfig(),
		Activator: activator.DefaultConfig(),
	}
}

// Store combines the history capabilities a session pipeline uses.
// May be nil: priors fall back to uniform and logging is skipped.
type Store interface {
	estimator.Store
	ensemble.StabilityRecorder
}

// Options customize one session at creation time.
type Options struct {
	UserID string
	// PriorOverride is an assessment-derived prior; takes precedence over
	// the historical prior.
	PriorOverride belief.Distribution
}

// #endregion manager-config

// #region manager

// Manager owns all session pipelines, keyed by session id. Sessions are
// independent and may be analyzed in parallel; the per-pipeline mutex
// serializes turns within one session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Pipeline

	extractor *signals.Extractor
	table     estimator.LikelihoodTable
	store     Store
	cls       classifier.Capability
	cfg       Config
}

// NewManager creates a manager. store and cls may be nil.
func NewManager(lex signals.Lexicon, table estimator.LikelihoodTable, store Store, cls classifier.Capability, cfg Config) *Manager {
	return &Manager{
		sessions:  make(map[string]*Pipeline),
		extractor: signals.NewExtractor(lex),
		table:     table,
		store:     store,
		cls:       cls,
		cfg:       cfg,
	}
}

// GetOrCreate returns the session's pipeline, lazily constructing and
// initializing an estimator on first use.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string, opts Options) (*Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.sessions[sessionID]; ok {
		return p, nil
	}

	userID := opts.UserID
	if userID == "" {
		userID = sessionID
	}

	var estStore estimator.Store
	var recorder ensemble.StabilityRecorder
	if m.store != nil {
		estStore = m.store
		recorder = m.store
	}

	est := estimator.New(userID, sessionID, m.table, estStore, m.cfg.Estimator)
	if err := est.Initialize(ctx, opts.PriorOverride); err != nil {
		return nil, fmt.Errorf("initialize session %s: %w", sessionID, err)
	}

	p := &Pipeline{
		sessionID: sessionID,
		userID:    userID,
		extractor: m.extractor,
		engine:    ensemble.New(userID, sessionID, est, m.cls, recorder, m.cfg.Ensemble),
		activator: activator.New(m.cfg.Activator),
		fatigue:   activator.NewFatigue(),
	}
	m.sessions[sessionID] = p
	return p, nil
}

// Get returns an existing session's pipeline.
func (m *Manager) Get(sessionID string) (*Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	return p, nil
}

// Reset discards a session's estimator state.
func (m *Manager) Reset(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrUnknownSession
	}
	delete(m.sessions, sessionID)
	return nil
}

// #endregion manager
