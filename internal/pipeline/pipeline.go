// Package pipeline sequences one screening request through its stages:
// validate → digitize → standardize → classify → decide. Each terminal
// state produces exactly one result record; per-request failures are caught
// here and never escape as a crash.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/PranavKarne/GNN-HF/internal/decision"
	"github.com/PranavKarne/GNN-HF/internal/ecg"
	"github.com/PranavKarne/GNN-HF/internal/imageio"
	"github.com/PranavKarne/GNN-HF/internal/report"
	"github.com/PranavKarne/GNN-HF/internal/validity"
)

// Gate decides whether an image is worth digitizing.
type Gate interface {
	Check(ctx context.Context, imagePath string) validity.Verdict
}

// Digitizer extracts a rectangular multi-lead signal from a chart image.
type Digitizer interface {
	Digitize(ctx context.Context, img image.Image) (*ecg.Signal, error)
}

// Standardizer resamples and length-normalizes a signal.
type Standardizer interface {
	Standardize(sig *ecg.Signal) (*ecg.Signal, error)
}

// Scorer produces class probabilities for a standardized signal.
type Scorer interface {
	Score(ctx context.Context, sig *ecg.Signal) ([]float64, error)
}

// Decider converts probabilities into the final calibrated outcome.
type Decider interface {
	Decide(probs []float64) decision.Result
}

// stage names the orchestrator's states for logging.
type stage string

const (
	stageValidating    stage = "validating"
	stageDigitizing    stage = "digitizing"
	stageStandardizing stage = "standardizing"
	stageClassifying   stage = "classifying"
	stageDeciding      stage = "deciding"
)

// Pipeline wires the five request stages together.
type Pipeline struct {
	gate         Gate
	digitizer    Digitizer
	standardizer Standardizer
	scorer       Scorer
	decider      Decider
}

// New creates a Pipeline from the given components.
func New(gate Gate, dig Digitizer, std Standardizer, scorer Scorer, dec Decider) *Pipeline {
	return &Pipeline{
		gate:         gate,
		digitizer:    dig,
		standardizer: std,
		scorer:       scorer,
		decider:      dec,
	}
}

// Run processes one request end to end and always returns exactly one
// record. The context bounds the external-service and classifier calls;
// cancellation takes effect at stage boundaries.
func (p *Pipeline) Run(ctx context.Context, imagePath string) report.Record {
	enter(stageValidating, imagePath)
	verdict := p.gate.Check(ctx, imagePath)
	if verdict.Warning != "" {
		slog.Warn("validity gate failed open", "warning", verdict.Warning)
	}
	if !verdict.Valid {
		rec := report.Failure(report.CodeInvalidECG, fmt.Sprintf(
			"The uploaded image does not appear to be a valid ECG. Confidence: %.2f%%",
			verdict.Confidence*100))
		rec.ValidationConfidence = ptr(report.Percent(verdict.Confidence))
		rec.IsValidECG = ptr(false)
		return rec
	}

	enter(stageDigitizing, imagePath)
	img, err := imageio.Load(imagePath)
	if err != nil {
		return failOn(verdict, report.CodeImageRead,
			"Could not read ECG image: "+err.Error())
	}
	sig, err := p.digitizer.Digitize(ctx, img)
	if err != nil {
		return failOn(verdict, report.CodeDigitization,
			"Failed to extract ECG signals from image: "+err.Error())
	}

	enter(stageStandardizing, imagePath)
	std, err := p.standardizer.Standardize(sig)
	if err != nil {
		// A well-formed digitizer output cannot fail standardization;
		// reaching this branch is an internal invariant violation.
		slog.Error("standardization invariant violated", "error", err)
		return failOn(verdict, report.CodeInternal, err.Error())
	}

	enter(stageClassifying, imagePath)
	probs, err := p.scorer.Score(ctx, std)
	if err != nil {
		return failOn(verdict, report.CodeClassification,
			"Disease classification failed: "+err.Error())
	}

	enter(stageDeciding, imagePath)
	res := p.decider.Decide(probs)
	slog.Info("screening decision",
		"class", res.Class,
		"name", ecg.DisplayNames[res.Class],
		"risk_level", res.RiskLevel,
		"risk_score", res.RiskScore,
		"passed", len(res.Passing))

	return success(res, probs, verdict)
}

// success assembles the full result record for a completed request.
func success(res decision.Result, probs []float64, verdict validity.Verdict) report.Record {
	probMap := make(map[string]float64, len(ecg.ClassOrder))
	for i, c := range ecg.ClassOrder {
		probMap[string(c)] = report.Percent(probs[i])
	}

	details := make([]report.ThresholdDetail, 0, len(res.Passing))
	for _, pass := range res.Passing {
		details = append(details, report.ThresholdDetail{
			Class:       string(pass.Class),
			Probability: pass.Probability,
			Threshold:   pass.Threshold,
		})
	}

	return report.Record{
		Success:              true,
		PredictedClass:       string(res.Class),
		RiskScore:            ptr(res.RiskScore),
		RiskLevel:            res.RiskLevel,
		Confidence:           ptr(report.Round2(res.Confidence)),
		Probabilities:        probMap,
		ThresholdDetails:     details,
		ValidationConfidence: ptr(report.Percent(verdict.Confidence)),
		IsValidECG:           ptr(true),
		Warning:              verdict.Warning,
	}
}

// failOn builds a failure record that keeps the gate's verdict attached.
func failOn(verdict validity.Verdict, code, message string) report.Record {
	rec := report.Failure(code, message)
	rec.ValidationConfidence = ptr(report.Percent(verdict.Confidence))
	rec.Warning = verdict.Warning
	return rec
}

func enter(st stage, imagePath string) {
	slog.Debug("pipeline stage", "stage", string(st), "image", imagePath)
}

func ptr[T any](v T) *T { return &v }
