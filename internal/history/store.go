package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS pattern_detections (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	pattern       TEXT NOT NULL,
	confidence    REAL NOT NULL,
	distribution  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pattern_detections_user
ON pattern_detections(user_id, created_at);

CREATE TABLE IF NOT EXISTS stability_snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	pattern       TEXT NOT NULL,
	confidence    REAL NOT NULL,
	verdict       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stability_snapshots_session
ON stability_snapshots(session_id, created_at);
`
// #endregion schema

// #region store-struct
// Store is the append-only detection and stability log in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for read-only tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region record-detection
// RecordDetection appends one detection row. The ID is generated when empty.
func (s *Store) RecordDetection(ctx context.Context, d Detection) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	distJSON, err := json.Marshal(d.Distribution)
	if err != nil {
		return fmt.Errorf("marshal distribution: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pattern_detections (id, user_id, session_id, pattern, confidence, distribution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.SessionID, string(d.Pattern), d.Confidence,
		string(distJSON), d.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}
// #endregion record-detection

// #region recent-detections
// RecentDetections returns the user's detections since the given time,
// most recent first, capped at limit.
func (s *Store) RecentDetections(ctx context.Context, userID string, since time.Time, limit int) ([]Detection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, session_id, pattern, confidence, distribution, created_at
		 FROM pattern_detections
		 WHERE user_id = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, since.UTC().Format(time.RFC3339Nano), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var out []Detection
	for rows.Next() {
		var d Detection
		var pattern, distJSON, createdStr string
		if err := rows.Scan(&d.ID, &d.UserID, &d.SessionID, &pattern, &d.Confidence, &distJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		d.Pattern = belief.Pattern(pattern)
		if err := json.Unmarshal([]byte(distJSON), &d.Distribution); err != nil {
			return nil, fmt.Errorf("unmarshal distribution: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, d)
	}
	return out, rows.Err()
}
// #endregion recent-detections

// #region summary
// Summarize aggregates a user's recent detections into a dominant-pattern view.
func (s *Store) Summarize(ctx context.Context, userID string, since time.Time, limit int) (Summary, error) {
	detections, err := s.RecentDetections(ctx, userID, since, limit)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Distribution: make(map[belief.Pattern]int)}
	if len(detections) == 0 {
		return sum, nil
	}

	confByPattern := make(map[belief.Pattern]float64)
	for _, d := range detections {
		sum.Distribution[d.Pattern]++
		confByPattern[d.Pattern] += d.Confidence
		if d.CreatedAt.After(sum.LastSeen) {
			sum.LastSeen = d.CreatedAt
		}
	}
	sum.SampleCount = len(detections)

	best := -1
	for _, p := range belief.Patterns {
		if sum.Distribution[p] > best {
			best = sum.Distribution[p]
			sum.Dominant = p
		}
	}
	sum.AvgConfidence = confByPattern[sum.Dominant] / float64(sum.Distribution[sum.Dominant])
	return sum, nil
}
// #endregion summary

// #region record-stability
// RecordStability appends one stability snapshot row.
func (s *Store) RecordStability(ctx context.Context, snap StabilitySnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stability_snapshots (user_id, session_id, pattern, confidence, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.UserID, snap.SessionID, string(snap.Pattern), snap.Confidence,
		snap.Verdict, snap.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert stability snapshot: %w", err)
	}
	return nil
}
// #endregion record-stability

// #region session-stability
// SessionStability returns a session's stability snapshots in arrival order.
func (s *Store) SessionStability(ctx context.Context, sessionID string, limit int) ([]StabilitySnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, session_id, pattern, confidence, verdict, created_at
		 FROM stability_snapshots
		 WHERE session_id = ?
		 ORDER BY created_at ASC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query stability snapshots: %w", err)
	}
	defer rows.Close()

	var out []StabilitySnapshot
	for rows.Next() {
		var snap StabilitySnapshot
		var pattern, createdStr string
		if err := rows.Scan(&snap.UserID, &snap.SessionID, &pattern, &snap.Confidence, &snap.Verdict, &createdStr); err != nil {
			return nil, fmt.Errorf("scan stability snapshot: %w", err)
		}
		snap.Pattern = belief.Pattern(pattern)
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, snap)
	}
	return out, rows.Err()
}
// #endregion session-stability
