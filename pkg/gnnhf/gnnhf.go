// Package gnnhf exposes the ECG screening pipeline as an embeddable API.
// A Screener loads both classifier models once and is safe for concurrent
// use across requests.
package gnnhf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PranavKarne/GNN-HF/internal/classifier"
	"github.com/PranavKarne/GNN-HF/internal/decision"
	"github.com/PranavKarne/GNN-HF/internal/digitizer"
	"github.com/PranavKarne/GNN-HF/internal/digitizer/grid"
	"github.com/PranavKarne/GNN-HF/internal/digitizer/remote"
	"github.com/PranavKarne/GNN-HF/internal/ecg"
	"github.com/PranavKarne/GNN-HF/internal/pipeline"
	"github.com/PranavKarne/GNN-HF/internal/report"
	"github.com/PranavKarne/GNN-HF/internal/standardize"
	"github.com/PranavKarne/GNN-HF/internal/validity"
)

// ThresholdDetail describes one disease class that passed its cutoff.
type ThresholdDetail struct {
	Class       string
	Probability float64
	Threshold   float64
}

// Result is one screening outcome. On failure only Error and Message are
// meaningful (plus the validation fields when rejection was the cause).
type Result struct {
	Success              bool
	PredictedClass       string
	RiskScore            int
	RiskLevel            string
	Confidence           float64
	Probabilities        map[string]float64
	ThresholdDetails     []ThresholdDetail
	ValidationConfidence float64
	IsValidECG           bool
	Warning              string
	Error                string
	Message              string
}

// Screener screens printed ECG images for heart disease.
type Screener struct {
	pipeline  *pipeline.Pipeline
	disease   *classifier.DiseaseScorer
	validator *classifier.ValidityScorer
}

// New creates a Screener, eagerly loading model weights. The disease model
// is required; a missing validator degrades the gate to fail-open. This is
// an expensive call: create once, reuse across requests.
func New(opts ...Option) (*Screener, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	diseasePath, validatorPath := resolvePaths(o)

	frames := o.targetRate * o.durationSec
	disease, err := classifier.NewDiseaseScorer(diseasePath, frames, len(ecg.DefaultLeadOrder))
	if err != nil {
		return nil, fmt.Errorf("gnnhf: %w", err)
	}

	var validator *classifier.ValidityScorer
	var gateScorer validity.Scorer
	if !o.noValidator {
		v, err := classifier.NewValidityScorer(validatorPath)
		if err != nil {
			slog.Warn("gnnhf: validity model not loaded, gate will fail open", "error", err)
		} else {
			validator = v
			gateScorer = v
		}
	}

	gridExt, err := grid.New(o.gridRows, o.gridCols, o.traceCutoff,
		o.ampScale, o.rawLength, ecg.DefaultLeadOrder)
	if err != nil {
		disease.Close()
		return nil, fmt.Errorf("gnnhf: %w", err)
	}

	var preferred digitizer.ServiceExtractor
	if o.serviceURL != "" {
		preferred = remote.New(o.serviceURL, o.serviceToken)
	}

	thresholds := make(ecg.ThresholdTable, len(o.thresholds))
	for _, c := range ecg.DiseasePriority {
		if v, ok := o.thresholds[string(c)]; ok {
			thresholds[c] = v
		}
	}

	p := pipeline.New(
		validity.New(gateScorer, o.validityCutoff),
		digitizer.New(preferred, gridExt, ecg.DefaultLeadOrder, o.contrastBoost),
		standardize.New(o.sourceRate, o.targetRate, o.durationSec),
		disease,
		decision.New(thresholds, o.normRiskCap),
	)

	return &Screener{pipeline: p, disease: disease, validator: validator}, nil
}

// Screen processes one ECG image and returns its screening outcome.
func (s *Screener) Screen(ctx context.Context, imagePath string) Result {
	return fromRecord(s.pipeline.Run(ctx, imagePath))
}

// Close releases the loaded model sessions.
func (s *Screener) Close() error {
	var first error
	if s.validator != nil {
		first = s.validator.Close()
	}
	if err := s.disease.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

func fromRecord(rec report.Record) Result {
	r := Result{
		Success:        rec.Success,
		PredictedClass: rec.PredictedClass,
		RiskLevel:      rec.RiskLevel,
		Probabilities:  rec.Probabilities,
		Warning:        rec.Warning,
		Error:          rec.Error,
		Message:        rec.Message,
	}
	if rec.RiskScore != nil {
		r.RiskScore = *rec.RiskScore
	}
	if rec.Confidence != nil {
		r.Confidence = *rec.Confidence
	}
	if rec.ValidationConfidence != nil {
		r.ValidationConfidence = *rec.ValidationConfidence
	}
	if rec.IsValidECG != nil {
		r.IsValidECG = *rec.IsValidECG
	}
	for _, d := range rec.ThresholdDetails {
		r.ThresholdDetails = append(r.ThresholdDetails, ThresholdDetail(d))
	}
	return r
}
