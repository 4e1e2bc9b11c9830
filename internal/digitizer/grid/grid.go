// Package grid implements the fallback waveform extractor for printed ECG
// charts laid out as a fixed grid of per-lead panels.
//
// The extractor assumes a 6-row × 2-column layout: limb leads I–aVF printed
// down the left column, chest leads V1–V6 down the right. Each panel holds
// one lead's trace as a dark line on a light background.
package grid

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

const flatGuard = 1e-8 // keeps amplitude normalization defined for flat traces

// Extractor turns a rasterized grid chart into one waveform per lead.
type Extractor struct {
	rows      int
	cols      int
	cutoff    uint8
	ampScale  float64
	rawLength int
	leadOrder []string
}

// New creates an Extractor. leadOrder gives the clinical lead names in
// canonical order; its length must equal rows*cols.
func New(rows, cols int, cutoff uint8, ampScale float64, rawLength int, leadOrder []string) (*Extractor, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid: invalid layout %dx%d", rows, cols)
	}
	if rawLength <= 0 {
		return nil, fmt.Errorf("grid: invalid raw length %d", rawLength)
	}
	if len(leadOrder) != rows*cols {
		return nil, fmt.Errorf("grid: %d lead names for a %dx%d layout", len(leadOrder), rows, cols)
	}
	return &Extractor{
		rows:      rows,
		cols:      cols,
		cutoff:    cutoff,
		ampScale:  ampScale,
		rawLength: rawLength,
		leadOrder: leadOrder,
	}, nil
}

// Extract digitizes every panel of the chart and returns one fixed-length
// waveform per lead, keyed by clinical lead name.
func (e *Extractor) Extract(img image.Image) (ecg.LeadMap, error) {
	bounds := img.Bounds()
	panelW := bounds.Dx() / e.cols
	panelH := bounds.Dy() / e.rows
	if panelW < 1 || panelH < 1 {
		return nil, fmt.Errorf("grid: image %dx%d too small for %dx%d layout",
			bounds.Dx(), bounds.Dy(), e.rows, e.cols)
	}

	gray := imaging.Grayscale(img)

	leads := make(ecg.LeadMap, e.rows*e.cols)
	for p := 0; p < e.rows*e.cols; p++ {
		row, col := p/e.cols, p%e.cols
		rect := image.Rect(col*panelW, row*panelH, (col+1)*panelW, (row+1)*panelH)
		panel := imaging.Crop(gray, rect)

		wf := e.tracePanel(panel)
		resampled, err := resampleSmooth(wf, e.rawLength)
		if err != nil {
			return nil, fmt.Errorf("grid: panel %d: %w", p, err)
		}

		// Printed charts interleave lead groups by column: the grid is
		// filled row-major, the clinical order runs column-major.
		clinical := col*e.rows + row
		leads[e.leadOrder[clinical]] = resampled
	}
	return leads, nil
}

// tracePanel extracts the raw waveform of one panel: per pixel column, the
// row-centroid of trace pixels, carried forward over empty columns, then
// baseline-centered and amplitude-normalized.
func (e *Extractor) tracePanel(panel *image.NRGBA) []float64 {
	w := panel.Bounds().Dx()
	h := panel.Bounds().Dy()

	ys := make([]float64, w)
	last := float64(h) / 2 // empty leading columns resolve to half height
	for x := 0; x < w; x++ {
		sum, count := 0, 0
		for y := 0; y < h; y++ {
			if panel.NRGBAAt(x, y).R < e.cutoff {
				sum += y
				count++
			}
		}
		if count > 0 {
			last = float64(sum) / float64(count)
		}
		ys[x] = last
	}

	// Flip so upward deflections are positive, then center and scale to
	// a fixed peak amplitude.
	wf := make([]float64, w)
	for i, y := range ys {
		wf[i] = float64(h) - y
	}
	mean := floats.Sum(wf) / float64(len(wf))
	floats.AddConst(-mean, wf)
	scale := floats.Norm(wf, math.Inf(1)) + flatGuard
	floats.Scale(e.ampScale/scale, wf)
	return wf
}

// resampleSmooth maps a pixel-length waveform onto n evenly spaced samples
// with an Akima spline. Panels too narrow for a spline fit fall back to
// linear interpolation.
func resampleSmooth(wf []float64, n int) ([]float32, error) {
	if len(wf) == 0 {
		return nil, fmt.Errorf("empty waveform")
	}
	out := make([]float32, n)
	if len(wf) == 1 {
		for i := range out {
			out[i] = float32(wf[0])
		}
		return out, nil
	}

	xs := make([]float64, len(wf))
	for i := range xs {
		xs[i] = float64(i)
	}

	var pred interp.FittablePredictor
	if len(wf) >= 5 {
		pred = &interp.AkimaSpline{}
	} else {
		pred = &interp.PiecewiseLinear{}
	}
	if err := pred.Fit(xs, wf); err != nil {
		return nil, fmt.Errorf("resample fit: %w", err)
	}

	span := float64(len(wf) - 1)
	for i := range out {
		var x float64
		if n > 1 {
			x = float64(i) * span / float64(n-1)
		}
		out[i] = float32(pred.Predict(x))
	}
	return out, nil
}
