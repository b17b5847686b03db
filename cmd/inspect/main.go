package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/history"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to mca_history.db")
	userID := flag.String("user", "", "show detections for one user")
	sessionID := flag.String("session", "", "show stability snapshots for one session")
	days := flag.Int("days", 30, "lookback window in days")
	last := flag.Int("last", 50, "cap on rows shown")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*userID == "" && *sessionID == "") {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/mca_history.db (--user id | --session id) [--days N] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := history.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if *sessionID != "" {
		err = runStabilityMode(ctx, store, *sessionID, *last, *jsonOut)
	} else {
		err = runUserMode(ctx, store, *userID, *days, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region user-mode

func runUserMode(ctx context.Context, store *history.Store, userID string, days, last int, jsonOut bool) error {
	since := time.Now().AddDate(0, 0, -days)
	detections, err := store.RecentDetections(ctx, userID, since, last)
	if err != nil {
		return err
	}
	summary, err := store.Summarize(ctx, userID, since, last)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"detections": detections,
			"summary":    summary,
		})
	}

	if len(detections) == 0 {
		fmt.Fprintln(os.Stderr, "no detections found")
		return nil
	}

	fmt.Printf("%-20s %-16s %-4s %-6s %s\n", "created", "session", "pat", "conf", "top probabilities")
	for i := len(detections) - 1; i >= 0; i-- {
		d := detections[i]
		fmt.Printf("%-20s %-16s %-4s %.3f  %s\n",
			d.CreatedAt.Format("2006-01-02 15:04:05"),
			truncate(d.SessionID, 16),
			d.Pattern, d.Confidence, topProbs(d.Distribution))
	}
	fmt.Printf("\ndominant=%s avgConf=%.3f samples=%d lastSeen=%s\n",
		summary.Dominant, summary.AvgConfidence, summary.SampleCount,
		summary.LastSeen.Format("2006-01-02 15:04:05"))
	return nil
}

// #endregion user-mode

// #region stability-mode

func runStabilityMode(ctx context.Context, store *history.Store, sessionID string, last int, jsonOut bool) error {
	snaps, err := store.SessionStability(ctx, sessionID, last)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(snaps)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stderr, "no stability snapshots found")
		return nil
	}

	fmt.Printf("%-20s %-4s %-6s %s\n", "created", "pat", "conf", "verdict")
	for _, snap := range snaps {
		fmt.Printf("%-20s %-4s %.3f  %s\n",
			snap.CreatedAt.Format("2006-01-02 15:04:05"),
			snap.Pattern, snap.Confidence, snap.Verdict)
	}
	return nil
}

// #endregion stability-mode

// #region helpers

func topProbs(dist belief.Distribution) string {
	out := ""
	for _, p := range belief.Patterns {
		if dist[p] >= 0.15 {
			if out != "" {
				out += " "
			}
			out += fmt.Sprintf("%s=%.2f", p, dist[p])
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion helpers
