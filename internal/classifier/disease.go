package classifier

import (
	"context"
	"fmt"
	"math"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

const zNormGuard = 1e-8

// DiseaseScorer runs the 5-class disease model over a standardized signal.
type DiseaseScorer struct {
	session    *ort.DynamicAdvancedSession
	frames     int
	leads      int
	numClasses int
}

// NewDiseaseScorer loads the disease model and validates its tensor shapes
// against the standardized signal geometry (frames × leads). A load failure
// here is fatal to the process; the pipeline cannot run without it.
func NewDiseaseScorer(modelPath string, frames, leads int) (*DiseaseScorer, error) {
	session, input, output, err := newSession(modelPath)
	if err != nil {
		return nil, fmt.Errorf("disease scorer: %w", err)
	}

	// Expect input [batch, frames, leads] and output [batch, classes].
	// Dynamic dimensions are reported as -1 and validated at run time.
	if len(input.Dimensions) != 3 {
		session.Destroy()
		return nil, fmt.Errorf("disease scorer: expected 3D input tensor, got %v", input.Dimensions)
	}
	if d := input.Dimensions[1]; d > 0 && int(d) != frames {
		session.Destroy()
		return nil, fmt.Errorf("disease scorer: model expects %d frames, pipeline produces %d", d, frames)
	}
	if d := input.Dimensions[2]; d > 0 && int(d) != leads {
		session.Destroy()
		return nil, fmt.Errorf("disease scorer: model expects %d leads, pipeline produces %d", d, leads)
	}
	if len(output.Dimensions) != 2 {
		session.Destroy()
		return nil, fmt.Errorf("disease scorer: expected 2D output tensor, got %v", output.Dimensions)
	}
	numClasses := int(output.Dimensions[1])
	if numClasses <= 0 {
		numClasses = len(ecg.ClassOrder)
	}
	if numClasses != len(ecg.ClassOrder) {
		session.Destroy()
		return nil, fmt.Errorf("disease scorer: model outputs %d classes, want %d", numClasses, len(ecg.ClassOrder))
	}

	return &DiseaseScorer{
		session:    session,
		frames:     frames,
		leads:      leads,
		numClasses: numClasses,
	}, nil
}

// Score runs inference on the standardized signal and returns class
// probabilities aligned with ecg.ClassOrder. The signal is z-normalized per
// lead before inference, matching the model's training preprocessing.
func (s *DiseaseScorer) Score(ctx context.Context, sig *ecg.Signal) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sig.Frames() != s.frames || sig.Leads() != s.leads {
		return nil, fmt.Errorf("disease scorer: signal shape %dx%d, want %dx%d",
			sig.Frames(), sig.Leads(), s.frames, s.leads)
	}

	in, err := ort.NewTensor(ort.NewShape(1, int64(s.frames), int64(s.leads)), s.normalizedTensor(sig))
	if err != nil {
		return nil, fmt.Errorf("disease scorer: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(s.numClasses)))
	if err != nil {
		return nil, fmt.Errorf("disease scorer: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, &ecg.ClassificationError{Err: err}
	}

	logits := make([]float32, s.numClasses)
	copy(logits, out.GetData())
	return softmax(logits), nil
}

// normalizedTensor flattens the signal to row-major (frames × leads) with
// each lead centered and scaled to unit variance.
func (s *DiseaseScorer) normalizedTensor(sig *ecg.Signal) []float32 {
	data := make([]float32, s.frames*s.leads)
	for l := 0; l < s.leads; l++ {
		lead := sig.Lead(l)

		var sum float64
		for _, v := range lead {
			sum += float64(v)
		}
		mu := sum / float64(len(lead))

		var sq float64
		for _, v := range lead {
			d := float64(v) - mu
			sq += d * d
		}
		sd := math.Sqrt(sq/float64(len(lead))) + zNormGuard

		for t, v := range lead {
			data[t*s.leads+l] = float32((float64(v) - mu) / sd)
		}
	}
	return data
}

// Close releases the ONNX session.
func (s *DiseaseScorer) Close() error {
	return s.session.Destroy()
}
