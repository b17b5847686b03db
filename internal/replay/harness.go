package replay

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/session"
)

// #region types

// TurnResult captures the pipeline outcome for one replayed turn.
type TurnResult struct {
	SessionID    string         `json:"sessionId"`
	TurnIndex    int            `json:"turnIndex"`
	TopPattern   belief.Pattern `json:"topPattern"`
	Confidence   float64        `json:"confidence"`
	NeedMoreData bool           `json:"needMoreData"`
	Method       string         `json:"method"`
	ActiveIDs    []string       `json:"activeIds"`
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns    int                    `json:"totalTurns"`
	ByPattern     map[belief.Pattern]int `json:"byPattern"`
	Interventions map[string]int         `json:"interventions"`
}

// #endregion types

// #region harness

// Harness replays recorded sessions through the full pipeline offline.
// Deterministic given the fixture: use a nil classifier so no external
// capability participates.
type Harness struct {
	mgr *session.Manager
}

// NewHarness creates a harness over the given manager.
func NewHarness(mgr *session.Manager) *Harness {
	return &Harness{mgr: mgr}
}

// Run replays every session in arrival order and returns per-turn results
// plus an aggregate summary.
func (h *Harness) Run(ctx context.Context, f Fixture) ([]TurnResult, Summary, error) {
	summary := Summary{
		ByPattern:     make(map[belief.Pattern]int),
		Interventions: make(map[string]int),
	}
	var results []TurnResult

	for _, sf := range f.Sessions {
		pipeline, err := h.mgr.GetOrCreate(ctx, sf.SessionID, session.Options{UserID: sf.UserID})
		if err != nil {
			return nil, Summary{}, fmt.Errorf("replay session %s: %w", sf.SessionID, err)
		}

		for i, turn := range sf.Turns {
			if strings.TrimSpace(turn.UserText) == "" {
				continue
			}
			res, err := pipeline.Analyze(ctx, sf.Turns[:i+1], i)
			if err != nil {
				return nil, Summary{}, fmt.Errorf("replay session %s turn %d: %w", sf.SessionID, i, err)
			}

			tr := TurnResult{
				SessionID:    sf.SessionID,
				TurnIndex:    i,
				TopPattern:   res.Pattern.TopPattern,
				Confidence:   res.Pattern.Confidence,
				NeedMoreData: res.Pattern.NeedMoreData,
				Method:       string(res.Pattern.Method),
			}
			for _, a := range res.ActiveMRs {
				tr.ActiveIDs = append(tr.ActiveIDs, a.ID)
				summary.Interventions[a.ID]++
			}
			results = append(results, tr)

			summary.TotalTurns++
			summary.ByPattern[res.Pattern.TopPattern]++
		}
	}
	return results, summary, nil
}

// #endregion harness
