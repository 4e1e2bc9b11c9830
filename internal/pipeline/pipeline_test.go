package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/PranavKarne/GNN-HF/internal/decision"
	"github.com/PranavKarne/GNN-HF/internal/ecg"
	"github.com/PranavKarne/GNN-HF/internal/report"
	"github.com/PranavKarne/GNN-HF/internal/validity"
)

type mockGate struct{ verdict validity.Verdict }

func (m *mockGate) Check(ctx context.Context, imagePath string) validity.Verdict {
	return m.verdict
}

type mockDigitizer struct {
	sig *ecg.Signal
	err error
}

func (m *mockDigitizer) Digitize(ctx context.Context, img image.Image) (*ecg.Signal, error) {
	return m.sig, m.err
}

type mockStandardizer struct {
	err error
}

func (m *mockStandardizer) Standardize(sig *ecg.Signal) (*ecg.Signal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return sig, nil
}

type mockScorer struct {
	probs []float64
	err   error
}

func (m *mockScorer) Score(ctx context.Context, sig *ecg.Signal) ([]float64, error) {
	return m.probs, m.err
}

type mockDecider struct{ res decision.Result }

func (m *mockDecider) Decide(probs []float64) decision.Result { return m.res }

func passGate() *mockGate {
	return &mockGate{verdict: validity.Verdict{Valid: true, Confidence: 0.97}}
}

func testSignal(t *testing.T) *ecg.Signal {
	t.Helper()
	leads := make([][]float32, 12)
	for i := range leads {
		leads[i] = make([]float32, 1000)
	}
	sig, err := ecg.NewSignal(leads)
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

// tempPNG writes a decodable image so the load stage succeeds.
func tempPNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_RejectsInvalidImage(t *testing.T) {
	gate := &mockGate{verdict: validity.Verdict{Valid: false, Confidence: 0.12}}
	p := New(gate, &mockDigitizer{}, &mockStandardizer{}, &mockScorer{}, &mockDecider{})

	rec := p.Run(context.Background(), "whatever.png")

	if rec.Success {
		t.Fatal("rejected image must not produce a success record")
	}
	if rec.Error != report.CodeInvalidECG {
		t.Errorf("error = %q, want %q", rec.Error, report.CodeInvalidECG)
	}
	if rec.Message != "The uploaded image does not appear to be a valid ECG. Confidence: 12.00%" {
		t.Errorf("unexpected message %q", rec.Message)
	}
	if rec.ValidationConfidence == nil || *rec.ValidationConfidence != 12.0 {
		t.Errorf("validation_confidence = %v, want 12", rec.ValidationConfidence)
	}
	if rec.IsValidECG == nil || *rec.IsValidECG {
		t.Errorf("is_valid_ecg = %v, want false", rec.IsValidECG)
	}
}

func TestRun_ImageReadFailure(t *testing.T) {
	p := New(passGate(), &mockDigitizer{}, &mockStandardizer{}, &mockScorer{}, &mockDecider{})

	rec := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing.png"))

	if rec.Success {
		t.Fatal("missing file must fail")
	}
	if rec.Error != report.CodeImageRead {
		t.Errorf("error = %q, want %q", rec.Error, report.CodeImageRead)
	}
}

func TestRun_DigitizationFailure(t *testing.T) {
	dig := &mockDigitizer{err: &ecg.DigitizationFailure{Reason: "no waveform pixels"}}
	p := New(passGate(), dig, &mockStandardizer{}, &mockScorer{}, &mockDecider{})

	rec := p.Run(context.Background(), tempPNG(t))

	if rec.Error != report.CodeDigitization {
		t.Errorf("error = %q, want %q", rec.Error, report.CodeDigitization)
	}
	if rec.ValidationConfidence == nil {
		t.Error("verdict confidence should stay attached to the failure")
	}
}

func TestRun_StandardizationFailureIsInternal(t *testing.T) {
	std := &mockStandardizer{err: &ecg.StandardizationError{Reason: "empty signal"}}
	p := New(passGate(), &mockDigitizer{sig: testSignal(t)}, std, &mockScorer{}, &mockDecider{})

	rec := p.Run(context.Background(), tempPNG(t))

	if rec.Error != report.CodeInternal {
		t.Errorf("error = %q, want %q", rec.Error, report.CodeInternal)
	}
}

func TestRun_ClassificationFailure(t *testing.T) {
	scorer := &mockScorer{err: &ecg.ClassificationError{Err: errors.New("session closed")}}
	p := New(passGate(), &mockDigitizer{sig: testSignal(t)}, &mockStandardizer{}, scorer, &mockDecider{})

	rec := p.Run(context.Background(), tempPNG(t))

	if rec.Error != report.CodeClassification {
		t.Errorf("error = %q, want %q", rec.Error, report.CodeClassification)
	}
}

func TestRun_Success(t *testing.T) {
	probs := []float64{0.01, 0.02, 0.95, 0.01, 0.01} // CD, HYP, MI, NORM, STTC
	res := decision.Result{
		Class: ecg.MI,
		Passing: []decision.Passing{
			{Class: ecg.MI, Probability: 0.95, Threshold: 0.92},
		},
		RiskLevel:  decision.RiskHigh,
		RiskScore:  95,
		Confidence: 95.0,
	}
	p := New(passGate(),
		&mockDigitizer{sig: testSignal(t)},
		&mockStandardizer{},
		&mockScorer{probs: probs},
		&mockDecider{res: res})

	rec := p.Run(context.Background(), tempPNG(t))

	if !rec.Success {
		t.Fatalf("record = %+v, want success", rec)
	}
	if rec.PredictedClass != "MI" {
		t.Errorf("predicted_class = %q, want MI", rec.PredictedClass)
	}
	if rec.RiskScore == nil || *rec.RiskScore != 95 {
		t.Errorf("risk_score = %v, want 95", rec.RiskScore)
	}
	if rec.RiskLevel != decision.RiskHigh {
		t.Errorf("risk_level = %q, want %q", rec.RiskLevel, decision.RiskHigh)
	}
	if rec.Confidence == nil || *rec.Confidence != 95.0 {
		t.Errorf("confidence = %v, want 95", rec.Confidence)
	}
	if got := rec.Probabilities["MI"]; got != 95.0 {
		t.Errorf("probabilities[MI] = %v, want 95", got)
	}
	if len(rec.Probabilities) != 5 {
		t.Errorf("probability map has %d entries, want 5", len(rec.Probabilities))
	}
	if len(rec.ThresholdDetails) != 1 {
		t.Fatalf("threshold_details = %v, want one entry", rec.ThresholdDetails)
	}
	d := rec.ThresholdDetails[0]
	if d.Class != "MI" || d.Probability != 0.95 || d.Threshold != 0.92 {
		t.Errorf("threshold detail = %+v", d)
	}
	if rec.IsValidECG == nil || !*rec.IsValidECG {
		t.Errorf("is_valid_ecg = %v, want true", rec.IsValidECG)
	}
	if rec.ValidationConfidence == nil || *rec.ValidationConfidence != 97.0 {
		t.Errorf("validation_confidence = %v, want 97", rec.ValidationConfidence)
	}
	if rec.Error != "" {
		t.Errorf("success record must not carry an error code, got %q", rec.Error)
	}
}

func TestRun_CarriesFailOpenWarning(t *testing.T) {
	gate := &mockGate{verdict: validity.Verdict{
		Valid:      true,
		Confidence: 1.0,
		Warning:    "validity scorer not loaded; failing open",
	}}
	p := New(gate,
		&mockDigitizer{sig: testSignal(t)},
		&mockStandardizer{},
		&mockScorer{probs: []float64{0, 0, 0, 0.9, 0}},
		&mockDecider{res: decision.Result{Class: ecg.NORM, RiskLevel: decision.RiskLow, RiskScore: 27, Confidence: 90}})

	rec := p.Run(context.Background(), tempPNG(t))

	if !rec.Success {
		t.Fatalf("record = %+v, want success", rec)
	}
	if rec.Warning == "" {
		t.Error("fail-open warning should surface in the record")
	}
}
