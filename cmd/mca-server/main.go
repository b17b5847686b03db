package main

import (
	"flag"
	"log"

	"github.com/danielpatrickdp/mca-engine/internal/classifier"
	"github.com/danielpatrickdp/mca-engine/internal/config"
	"github.com/danielpatrickdp/mca-engine/internal/estimator"
	"github.com/danielpatrickdp/mca-engine/internal/history"
	"github.com/danielpatrickdp/mca-engine/internal/server"
	"github.com/danielpatrickdp/mca-engine/internal/session"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := history.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open history store: %v", err)
	}
	defer store.Close()

	table := estimator.DefaultTable()
	if cfg.LikelihoodPath != "" {
		table, err = estimator.LoadTable(cfg.LikelihoodPath)
		if err != nil {
			log.Fatalf("load likelihood table: %v", err)
		}
		log.Printf("[MAIN] likelihood table %s loaded from %s", table.Version, cfg.LikelihoodPath)
	}

	var cls classifier.Capability
	if cfg.ClassifierURL != "" {
		cls = classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout)
		log.Printf("[MAIN] classifier enabled at %s", cfg.ClassifierURL)
	} else {
		log.Printf("[MAIN] no classifier configured, bayesian only")
	}

	mgr := session.NewManager(signals.DefaultLexicon(), table, store, cls, cfg.Pipeline)
	router := server.NewRouter(mgr)

	log.Printf("[MAIN] mca-engine listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBPath)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
// #endregion main
