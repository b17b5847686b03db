package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region fixture

// SessionFixture is one recorded session for offline replay.
type SessionFixture struct {
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	Turns     []signals.Turn `json:"turns"`
}

// Fixture is a recorded set of sessions, typically exported from production
// conversation history for threshold calibration.
type Fixture struct {
	Name     string           `json:"name"`
	Sessions []SessionFixture `json:"sessions"`
}

// #endregion fixture

// #region load

// LoadFixture reads a replay fixture from a JSON file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Sessions) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s: no sessions", path)
	}
	for i, s := range f.Sessions {
		if s.SessionID == "" {
			return Fixture{}, fmt.Errorf("fixture %s: session %d missing sessionId", path, i)
		}
	}
	return f, nil
}

// #endregion load
