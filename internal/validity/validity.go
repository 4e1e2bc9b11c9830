// Package validity gates requests on whether the input image looks like an
// ECG chart at all, before any digitization work is spent on it.
package validity

import "context"

// Scorer scores how likely an image file depicts a valid ECG.
type Scorer interface {
	Score(ctx context.Context, imagePath string) (float64, error)
}

// Verdict is the gate's inspectable outcome. Warning is non-empty when the
// gate failed open: the verdict then passes the image without having scored
// it, and the warning explains why.
type Verdict struct {
	Valid      bool
	Confidence float64
	Warning    string
}

// Gate wraps a Scorer with the fail-open policy: a broken or missing
// validator must never block a legitimate screening request.
type Gate struct {
	scorer Scorer // nil when the validator model did not load
	cutoff float64
}

// New creates a Gate. scorer may be nil, in which case every check fails
// open.
func New(scorer Scorer, cutoff float64) *Gate {
	return &Gate{scorer: scorer, cutoff: cutoff}
}

// Check scores the image at imagePath. The gate itself never reads pixel
// data; when no scorer is available the verdict is decided before the file
// is ever touched.
func (g *Gate) Check(ctx context.Context, imagePath string) Verdict {
	if g.scorer == nil {
		return Verdict{
			Valid:      true,
			Confidence: 1.0,
			Warning:    "validity scorer not loaded; failing open",
		}
	}

	prob, err := g.scorer.Score(ctx, imagePath)
	if err != nil {
		return Verdict{
			Valid:      true,
			Confidence: 1.0,
			Warning:    "validity scoring failed; failing open: " + err.Error(),
		}
	}

	return Verdict{Valid: prob >= g.cutoff, Confidence: prob}
}
