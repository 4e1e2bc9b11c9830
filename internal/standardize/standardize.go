// Package standardize resamples and length-normalizes multi-lead signals to
// the rate and duration the disease classifier was trained on.
package standardize

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// Standardizer converts signals to targetRate Hz and exactly
// targetRate*durationSec samples per lead.
type Standardizer struct {
	sourceRate  int
	targetRate  int
	durationSec int
}

// New creates a Standardizer.
func New(sourceRate, targetRate, durationSec int) *Standardizer {
	return &Standardizer{
		sourceRate:  sourceRate,
		targetRate:  targetRate,
		durationSec: durationSec,
	}
}

// Standardize resamples every lead from the source to the target rate and
// fixes the length to targetRate*durationSec samples: excess samples beyond
// the window are dropped, short signals are edge-padded with their final
// row. The length invariant holds for any input length, including a single
// sample.
func (s *Standardizer) Standardize(sig *ecg.Signal) (*ecg.Signal, error) {
	if sig == nil || sig.Leads() == 0 || sig.Frames() == 0 {
		return nil, &ecg.StandardizationError{Reason: "empty signal"}
	}

	up, down := 1, 1
	var kernel []float64
	if s.sourceRate != s.targetRate {
		// Reduce to lowest terms so the resampling ratio is exact and
		// bit-reproducible for a given rate pair.
		g := gcd(s.targetRate, s.sourceRate)
		up, down = s.targetRate/g, s.sourceRate/g
		kernel = designKernel(up, down)
	}

	target := s.targetRate * s.durationSec
	leads := make([][]float32, sig.Leads())
	for i := range leads {
		lead := sig.Lead(i)
		if kernel != nil {
			lead = resamplePoly(lead, up, down, kernel)
		}
		leads[i] = fixLength(lead, target)
	}
	return ecg.NewSignal(leads)
}

// designKernel builds the band-limited FIR for a polyphase up/down
// resampler: a Hamming-windowed sinc with cutoff at the tighter of the two
// Nyquist limits, DC gain normalized, then scaled by up to compensate the
// zero-stuffing attenuation.
func designKernel(up, down int) []float64 {
	maxRate := up
	if down > maxRate {
		maxRate = down
	}
	halfLen := 10 * maxRate
	cutoff := 1 / float64(maxRate)

	h := make([]float64, 2*halfLen+1)
	for i := range h {
		h[i] = cutoff * sinc(cutoff*float64(i-halfLen))
	}
	window.Hamming(h)
	floats.Scale(float64(up)/floats.Sum(h), h)
	return h
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// resamplePoly filters and decimates the conceptually zero-stuffed input,
// with the filter delay compensated so output and input stay aligned.
// Output length is ceil(len(x)*up/down).
func resamplePoly(x []float32, up, down int, h []float64) []float32 {
	halfLen := (len(h) - 1) / 2
	nOut := (len(x)*up + down - 1) / down

	y := make([]float32, nOut)
	for m := range y {
		center := m*down + halfLen
		// Only input samples k with center-k*up inside the kernel
		// contribute.
		kMin := (center - (len(h) - 1) + up - 1) / up
		if kMin < 0 {
			kMin = 0
		}
		kMax := center / up
		if kMax > len(x)-1 {
			kMax = len(x) - 1
		}
		var acc float64
		for k := kMin; k <= kMax; k++ {
			acc += h[center-k*up] * float64(x[k])
		}
		y[m] = float32(acc)
	}
	return y
}

// fixLength pins a lead to exactly target samples: the head of the series
// is kept when longer, the final sample repeats when shorter.
func fixLength(lead []float32, target int) []float32 {
	if len(lead) >= target {
		return lead[:target]
	}
	out := make([]float32, target)
	copy(out, lead)
	last := lead[len(lead)-1]
	for i := len(lead); i < target; i++ {
		out[i] = last
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
