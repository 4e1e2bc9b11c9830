package classifier

import (
	"context"
	"fmt"
	"image"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/PranavKarne/GNN-HF/internal/imageio"
)

const defaultInputSize = 224

// ImageNet channel statistics, matching the validator's training transform.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// ValidityScorer runs the binary ECG-or-not model over a chart image. It is
// the only component that reads pixels on behalf of the validity gate; the
// gate itself never touches the file.
type ValidityScorer struct {
	session *ort.DynamicAdvancedSession
	size    int
}

// NewValidityScorer loads the validator model. Unlike the disease scorer, a
// failure here is survivable: the caller degrades to a fail-open gate.
func NewValidityScorer(modelPath string) (*ValidityScorer, error) {
	session, input, output, err := newSession(modelPath)
	if err != nil {
		return nil, fmt.Errorf("validity scorer: %w", err)
	}

	// Expect input [batch, 3, H, W] and output [batch, 1] (a single logit).
	if len(input.Dimensions) != 4 || (input.Dimensions[1] > 0 && input.Dimensions[1] != 3) {
		session.Destroy()
		return nil, fmt.Errorf("validity scorer: expected [batch,3,H,W] input, got %v", input.Dimensions)
	}
	if len(output.Dimensions) != 2 || (output.Dimensions[1] > 0 && output.Dimensions[1] != 1) {
		session.Destroy()
		return nil, fmt.Errorf("validity scorer: expected single-logit output, got %v", output.Dimensions)
	}
	size := int(input.Dimensions[2])
	if size <= 0 {
		size = defaultInputSize
	}

	return &ValidityScorer{session: session, size: size}, nil
}

// Score loads the image at path and returns the probability that it depicts
// a valid ECG chart.
func (s *ValidityScorer) Score(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	img, err := imageio.Load(path)
	if err != nil {
		return 0, fmt.Errorf("validity scorer: %w", err)
	}

	in, err := ort.NewTensor(ort.NewShape(1, 3, int64(s.size), int64(s.size)), s.inputTensor(img))
	if err != nil {
		return 0, fmt.Errorf("validity scorer: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("validity scorer: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return 0, fmt.Errorf("validity scorer: inference failed: %w", err)
	}

	return sigmoid(float64(out.GetData()[0])), nil
}

// inputTensor resizes the image to the model's square input and packs it in
// CHW order with ImageNet normalization.
func (s *ValidityScorer) inputTensor(img image.Image) []float32 {
	resized := resize.Resize(uint(s.size), uint(s.size), img, resize.Lanczos3)

	plane := s.size * s.size
	data := make([]float32, 3*plane)
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			idx := y*s.size + x
			data[idx] = (float32(r)/65535 - imagenetMean[0]) / imagenetStd[0]
			data[plane+idx] = (float32(g)/65535 - imagenetMean[1]) / imagenetStd[1]
			data[2*plane+idx] = (float32(b)/65535 - imagenetMean[2]) / imagenetStd[2]
		}
	}
	return data
}

// Close releases the ONNX session.
func (s *ValidityScorer) Close() error {
	return s.session.Destroy()
}
