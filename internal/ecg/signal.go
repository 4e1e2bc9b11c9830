package ecg

import "fmt"

// Signal is a rectangular multi-lead signal: one sample sequence per lead,
// all of equal length, leads ordered canonically. Samples are float32
// end to end; the pipeline never widens signal data.
type Signal struct {
	leads [][]float32
}

// NewSignal wraps per-lead sample slices into a Signal. All slices must have
// the same non-negative length. The slices are retained, not copied.
func NewSignal(leads [][]float32) (*Signal, error) {
	if len(leads) == 0 {
		return nil, fmt.Errorf("ecg: signal has no leads")
	}
	frames := len(leads[0])
	for i, l := range leads[1:] {
		if len(l) != frames {
			return nil, fmt.Errorf("ecg: lead %d has %d samples, want %d", i+1, len(l), frames)
		}
	}
	return &Signal{leads: leads}, nil
}

// ZeroSignal allocates a Signal of the given shape with all samples zero.
func ZeroSignal(frames, leads int) *Signal {
	data := make([][]float32, leads)
	for i := range data {
		data[i] = make([]float32, frames)
	}
	return &Signal{leads: data}
}

// Frames returns the number of samples per lead.
func (s *Signal) Frames() int {
	if len(s.leads) == 0 {
		return 0
	}
	return len(s.leads[0])
}

// Leads returns the number of leads.
func (s *Signal) Leads() int { return len(s.leads) }

// Lead returns the sample sequence for lead index i. The returned slice
// aliases the signal's storage.
func (s *Signal) Lead(i int) []float32 { return s.leads[i] }

// Tensor flattens the signal to row-major (frames × leads) order, the layout
// the disease classifier consumes.
func (s *Signal) Tensor() []float32 {
	frames, leads := s.Frames(), s.Leads()
	out := make([]float32, frames*leads)
	for t := 0; t < frames; t++ {
		for l := 0; l < leads; l++ {
			out[t*leads+l] = s.leads[l][t]
		}
	}
	return out
}
