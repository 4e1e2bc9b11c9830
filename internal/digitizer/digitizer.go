// Package digitizer turns a chart image into a rectangular multi-lead
// signal. It prefers an external digitization service and falls back
// deterministically to the built-in grid extractor, then reconciles lead
// lengths and imputes leads that came back empty.
package digitizer

import (
	"context"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// ServiceExtractor is the preferred external digitization path.
type ServiceExtractor interface {
	Extract(ctx context.Context, img image.Image) (ecg.LeadMap, error)
}

// FallbackExtractor is the deterministic local path used when the service
// is absent or fails.
type FallbackExtractor interface {
	Extract(img image.Image) (ecg.LeadMap, error)
}

// Digitizer orchestrates the preferred→fallback extraction chain. The
// substitution is internal: callers see one Digitize operation either way.
type Digitizer struct {
	preferred ServiceExtractor // nil when no service is configured
	fallback  FallbackExtractor
	leadOrder []string
	contrast  float64
}

// New creates a Digitizer. preferred may be nil; fallback must not be.
// contrast is a percentage boost applied to the image before either
// extraction path sees it, so both paths share identical input.
func New(preferred ServiceExtractor, fallback FallbackExtractor, leadOrder []string, contrast float64) *Digitizer {
	return &Digitizer{
		preferred: preferred,
		fallback:  fallback,
		leadOrder: leadOrder,
		contrast:  contrast,
	}
}

// Digitize extracts all leads from the chart image. It returns
// *ecg.DigitizationFailure when no path produced any lead samples.
func (d *Digitizer) Digitize(ctx context.Context, img image.Image) (*ecg.Signal, error) {
	enhanced := img
	if d.contrast != 0 {
		enhanced = imaging.AdjustContrast(img, d.contrast)
	}

	var raw ecg.LeadMap
	if d.preferred != nil {
		m, err := d.preferred.Extract(ctx, enhanced)
		switch {
		case err != nil:
			slog.Warn("digitization service failed, using grid fallback", "error", err)
		case d.maxLen(m) == 0:
			slog.Warn("digitization service returned no leads, using grid fallback")
		default:
			raw = m
		}
	}
	if raw == nil {
		m, err := d.fallback.Extract(enhanced)
		if err != nil {
			return nil, &ecg.DigitizationFailure{Reason: err.Error()}
		}
		raw = m
	}

	return d.reconcile(raw)
}

// reconcile aligns all leads to the longest extracted length and fills the
// gaps: short leads are edge-padded with their final sample, absent leads
// start as zero and are then imputed from their neighbors.
func (d *Digitizer) reconcile(raw ecg.LeadMap) (*ecg.Signal, error) {
	maxLen := d.maxLen(raw)
	if maxLen == 0 {
		return nil, &ecg.DigitizationFailure{Reason: "no leads extracted by any path"}
	}

	leads := make([][]float32, len(d.leadOrder))
	for i, name := range d.leadOrder {
		seq := make([]float32, maxLen)
		src := raw[name]
		copy(seq, src)
		for t := len(src); t > 0 && t < maxLen; t++ {
			seq[t] = src[len(src)-1]
		}
		leads[i] = seq
	}

	for _, i := range NeighborAverageImputation(leads) {
		slog.Info("imputed missing lead",
			"lead", d.leadOrder[i], "position", i)
	}

	return ecg.NewSignal(leads)
}

// maxLen returns the longest sample count among the canonical leads.
func (d *Digitizer) maxLen(m ecg.LeadMap) int {
	n := 0
	for _, name := range d.leadOrder {
		if len(m[name]) > n {
			n = len(m[name])
		}
	}
	return n
}
