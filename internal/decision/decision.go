// Package decision converts class probabilities into the final screening
// outcome using calibrated per-class thresholds and a margin-based ranking.
package decision

import (
	"sort"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// Risk levels for the final outcome.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// riskLevels is the fixed categorical mapping from class to risk level.
var riskLevels = map[ecg.Class]string{
	ecg.NORM: RiskLow,
	ecg.MI:   RiskHigh,
	ecg.STTC: RiskHigh,
	ecg.HYP:  RiskModerate,
	ecg.CD:   RiskModerate,
}

// Passing records one disease class whose probability crossed its threshold.
type Passing struct {
	Class       ecg.Class
	Probability float64
	Threshold   float64
}

// Margin is the amount by which the class cleared its cutoff.
func (p Passing) Margin() float64 { return p.Probability - p.Threshold }

// Result is the final calibrated decision.
type Result struct {
	Class      ecg.Class
	Passing    []Passing // margin-descending; empty for NORM outcomes
	RiskLevel  string
	RiskScore  int     // 0–100
	Confidence float64 // chosen-class probability as a percentage
}

// Engine applies the calibrated decision rule. Safe for concurrent use; the
// threshold table is read-only after construction.
type Engine struct {
	thresholds  ecg.ThresholdTable
	normRiskCap float64
}

// New creates an Engine with the given threshold table. normRiskCap bounds
// the risk score of a NORM outcome: a confidently normal reading must not
// present as high risk.
func New(thresholds ecg.ThresholdTable, normRiskCap float64) *Engine {
	return &Engine{thresholds: thresholds, normRiskCap: normRiskCap}
}

// Decide evaluates each disease class against its threshold. If none pass,
// the outcome is NORM. Otherwise the passing class with the largest margin
// wins; exact ties resolve to the earlier class in ecg.DiseasePriority.
func (e *Engine) Decide(probs []float64) Result {
	var passing []Passing
	for _, c := range ecg.DiseasePriority {
		p := probs[ecg.ClassIndex(c)]
		thr := e.thresholds[c]
		if p-thr >= 0 {
			passing = append(passing, Passing{Class: c, Probability: p, Threshold: thr})
		}
	}
	// Stable sort keeps the priority order for equal margins.
	sort.SliceStable(passing, func(i, j int) bool {
		return passing[i].Margin() > passing[j].Margin()
	})

	chosen := ecg.NORM
	if len(passing) > 0 {
		chosen = passing[0].Class
	}
	p := probs[ecg.ClassIndex(chosen)]

	score := p * 100
	if chosen == ecg.NORM {
		score = p * e.normRiskCap
	}

	return Result{
		Class:      chosen,
		Passing:    passing,
		RiskLevel:  riskLevels[chosen],
		RiskScore:  int(score),
		Confidence: p * 100,
	}
}
