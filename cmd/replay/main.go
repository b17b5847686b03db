package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/estimator"
	"github.com/danielpatrickdp/mca-engine/internal/replay"
	"github.com/danielpatrickdp/mca-engine/internal/session"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	tablePath := flag.String("table", "", "likelihood table YAML (defaults to builtin)")
	jsonOut := flag.Bool("json", false, "output per-turn results as JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--table table.yaml] [--json]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	table := estimator.DefaultTable()
	if *tablePath != "" {
		table, err = estimator.LoadTable(*tablePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	// No store and no classifier: the run is deterministic given the fixture.
	mgr := session.NewManager(signals.DefaultLexicon(), table, nil, nil, session.DefaultConfig())
	harness := replay.NewHarness(mgr)

	results, summary, err := harness.Run(context.Background(), fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(map[string]any{
			"results": results,
			"summary": summary,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printResults(results, summary)
}

// #endregion main

// #region report

func printResults(results []replay.TurnResult, summary replay.Summary) {
	fmt.Printf("%-16s %-5s %-4s %-6s %-9s %s\n", "session", "turn", "pat", "conf", "method", "interventions")
	for _, r := range results {
		flag := " "
		if r.NeedMoreData {
			flag = "?"
		}
		fmt.Printf("%-16s %-5d %-3s%s %.3f  %-9s %v\n",
			truncate(r.SessionID, 16), r.TurnIndex, r.TopPattern, flag,
			r.Confidence, r.Method, r.ActiveIDs)
	}

	fmt.Printf("\nturns=%d\n", summary.TotalTurns)
	for _, p := range belief.Patterns {
		if summary.ByPattern[p] > 0 {
			fmt.Printf("  %s (%s): %d\n", p, p.Description(), summary.ByPattern[p])
		}
	}
	if len(summary.Interventions) > 0 {
		fmt.Println("interventions:")
		for id, n := range summary.Interventions {
			fmt.Printf("  %s: %d\n", id, n)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion report
