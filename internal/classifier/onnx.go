// Package classifier wraps the two ONNX scoring models: the 5-class disease
// scorer and the binary image-validity scorer. Sessions are loaded once at
// startup and are safe to share across concurrent requests; every Score call
// allocates its own tensors.
package classifier

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initRuntime initializes the ONNX Runtime environment. Safe to call
// multiple times; only the first call has any effect.
func initRuntime(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// runtimeLibFor resolves the ONNX Runtime shared library path. We ship it
// alongside the model weights in the models/ directory.
func runtimeLibFor(modelPath string) string {
	return filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
}

// newSession loads an ONNX model with one input and one output tensor and
// returns the session plus the discovered tensor info.
func newSession(modelPath string) (*ort.DynamicAdvancedSession, ort.InputOutputInfo, ort.InputOutputInfo, error) {
	var none ort.InputOutputInfo

	if err := initRuntime(runtimeLibFor(modelPath)); err != nil {
		return nil, none, none, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, none, none, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, none, none, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, none, none, fmt.Errorf("onnx: model has no outputs")
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, none, none, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, none, none, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	return session, inputs[0], outputs[0], nil
}

// softmax converts raw logits to probabilities, numerically stabilized by
// max subtraction.
func softmax(logits []float32) []float64 {
	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(float64(v) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
