package estimator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/mca-engine/internal/belief"
	"github.com/danielpatrickdp/mca-engine/internal/signals"
)

// #region table

// DimReliance is the extra likelihood dimension for the derived AI-reliance
// scalar, scored alongside the twelve p/m/e/r dimensions.
const DimReliance signals.DimensionKey = "reliance"

// relianceNeutral is the extractor's default reliance when a turn shows no
// delegation language either way. Scoring is relative to it: a neutral turn
// contributes no reliance evidence, 0 argues against over-reliance, 3 for it.
const relianceNeutral = 1

// likelihoodDims is the scoring order: the twelve dimensions plus reliance.
var likelihoodDims = append(append([]signals.DimensionKey{}, signals.DimensionKeys...), DimReliance)

// LikelihoodTable holds the per-archetype, per-dimension affinity weights.
// Weights live in [-1, 1]: positive means the dimension is characteristic of
// the archetype, negative means it argues against it. The table is tunable
// configuration, not code; load a recalibrated version from YAML.
type LikelihoodTable struct {
	Version string                                               `yaml:"version"`
	Weights map[belief.Pattern]map[signals.DimensionKey]float64 `yaml:"weights"`
}

// Validate checks that all six archetypes are present with in-range weights.
func (t LikelihoodTable) Validate() error {
	for _, p := range belief.Patterns {
		dims, ok := t.Weights[p]
		if !ok {
			return fmt.Errorf("likelihood table %q: missing pattern %s", t.Version, p)
		}
		for dim, w := range dims {
			if w < -1 || w > 1 {
				return fmt.Errorf("likelihood table %q: pattern %s dim %s weight %.2f out of [-1,1]", t.Version, p, dim, w)
			}
		}
	}
	return nil
}

// #endregion table

// #region load

// LoadTable reads a likelihood table from a YAML file.
func LoadTable(path string) (LikelihoodTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LikelihoodTable{}, fmt.Errorf("read likelihood table: %w", err)
	}
	var t LikelihoodTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return LikelihoodTable{}, fmt.Errorf("parse likelihood table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return LikelihoodTable{}, err
	}
	return t, nil
}

// #endregion load

// #region default-table

// DefaultTable returns the built-in affinity weights, calibrated against the
// archetype profiles observed in course interaction data.
func DefaultTable() LikelihoodTable {
	return LikelihoodTable{
		Version: "builtin-v2",
		Weights: map[belief.Pattern]map[signals.DimensionKey]float64{
			belief.PatternA: {
				"p1": 0.9, "p2": 0.7, "p3": 0.8, "p4": 0.6,
				"m1": 0.2, "m2": 0.1, "m3": 0.3,
				"e1": 0.5, "e2": 0.3, "e3": 0.4,
				"r1": 0.0, "r2": 0.3,
				DimReliance: -0.3,
			},
			belief.PatternB: {
				"p1": 0.2, "p2": 0.2, "p3": 0.1, "p4": 0.1,
				"m1": 0.5, "m2": 0.6, "m3": 0.4,
				"e1": 0.2, "e2": 0.1, "e3": 0.1,
				"r1": 0.9, "r2": 0.2,
				DimReliance: 0.0,
			},
			belief.PatternC: {
				"p1": 0.15, "p2": 0.15, "p3": 0.15, "p4": 0.15,
				"m1": 0.15, "m2": 0.15, "m3": 0.15,
				"e1": 0.15, "e2": 0.15, "e3": 0.15,
				"r1": 0.15, "r2": 0.15,
				DimReliance: 0.0,
			},
			belief.PatternD: {
				"p1": 0.3, "p2": 0.2, "p3": 0.1, "p4": 0.1,
				"m1": 0.7, "m2": 0.5, "m3": 0.2,
				"e1": 0.9, "e2": 0.5, "e3": 0.5,
				"r1": 0.1, "r2": 0.7,
				DimReliance: -0.2,
			},
			belief.PatternE: {
				"p1": 0.3, "p2": 0.3, "p3": 0.2, "p4": 0.2,
				"m1": 0.2, "m2": 0.1, "m3": 0.3,
				"e1": 0.3, "e2": 0.9, "e3": 0.4,
				"r1": 0.2, "r2": 0.3,
				DimReliance: -0.1,
			},
			belief.PatternF: {
				"p1": -0.5, "p2": -0.5, "p3": -0.4, "p4": -0.4,
				"m1": -0.6, "m2": -0.5, "m3": -0.3,
				"e1": -0.6, "e2": -0.5, "e3": -0.4,
				"r1": -0.5, "r2": -0.5,
				DimReliance: 0.9,
			},
		},
	}
}

// #endregion default-table
