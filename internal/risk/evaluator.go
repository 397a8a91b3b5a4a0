// Package risk combines the anomaly and cluster signals into a single
// deterministic risk score. The rule is additive over independent signals;
// every weight and threshold is configuration, not a literal at a call site.
package risk

import "math"

type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Assessment is the anomaly verdict produced by the scoring oracle.
// Score is unbounded; by convention more negative means more anomalous.
type Assessment struct {
	IsAnomaly bool
	Score     float64
}

type Result struct {
	Score int
	Level Level
}

// Weights holds the contribution of each risk signal and the level cutoffs.
type Weights struct {
	Anomaly                 int
	ScoreMagnitude          int
	Cluster                 int
	ScoreMagnitudeThreshold float64
	HighRiskClusters        map[int]bool
	HighAt                  int
	MediumAt                int
}

// DefaultWeights mirrors the production rule: 40/10/20 contributions,
// |score| threshold 0.15, clusters 6 and 7 inherently risky, HIGH at 60,
// MEDIUM at 30.
func DefaultWeights() Weights {
	return Weights{
		Anomaly:                 40,
		ScoreMagnitude:          10,
		Cluster:                 20,
		ScoreMagnitudeThreshold: 0.15,
		HighRiskClusters:        map[int]bool{6: true, 7: true},
		HighAt:                  60,
		MediumAt:                30,
	}
}

type Evaluator struct {
	weights Weights
}

func NewEvaluator(w Weights) *Evaluator {
	if w.HighRiskClusters == nil {
		w.HighRiskClusters = map[int]bool{}
	}
	return &Evaluator{weights: w}
}

// Evaluate is pure: same inputs always yield the same result, and nothing
// else is touched. The score is never negative and has no upper clamp; with
// the default weights the maximum reachable value is 70.
func (e *Evaluator) Evaluate(a Assessment, clusterID int) Result {
	score := 0
	if a.IsAnomaly {
		score += e.weights.Anomaly
	}
	if math.Abs(a.Score) > e.weights.ScoreMagnitudeThreshold {
		score += e.weights.ScoreMagnitude
	}
	if e.weights.HighRiskClusters[clusterID] {
		score += e.weights.Cluster
	}

	level := LevelLow
	switch {
	case score >= e.weights.HighAt:
		level = LevelHigh
	case score >= e.weights.MediumAt:
		level = LevelMedium
	}
	return Result{Score: score, Level: level}
}
