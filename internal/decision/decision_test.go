package decision

import (
	"testing"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// probsFor builds a probability vector in ecg.ClassOrder layout.
func probsFor(m map[ecg.Class]float64) []float64 {
	probs := make([]float64, len(ecg.ClassOrder))
	for c, p := range m {
		probs[ecg.ClassIndex(c)] = p
	}
	return probs
}

func TestDecide_NormWhenNothingPasses(t *testing.T) {
	e := New(ecg.DefaultThresholds(), 30)

	res := e.Decide(probsFor(map[ecg.Class]float64{
		ecg.CD: 0.2, ecg.HYP: 0.2, ecg.MI: 0.2, ecg.NORM: 0.2, ecg.STTC: 0.2,
	}))

	if res.Class != ecg.NORM {
		t.Fatalf("class = %s, want NORM", res.Class)
	}
	if len(res.Passing) != 0 {
		t.Fatalf("passing = %v, want empty", res.Passing)
	}
	if res.RiskLevel != RiskLow {
		t.Errorf("risk level = %s, want %s", res.RiskLevel, RiskLow)
	}
	if res.RiskScore != 6 { // 0.2 * 30, truncated
		t.Errorf("risk score = %d, want 6", res.RiskScore)
	}
}

func TestDecide_LargestMarginWins(t *testing.T) {
	e := New(ecg.DefaultThresholds(), 30)

	// CD clears 0.91 by 0.04, MI clears 0.92 by 0.01: CD wins despite MI
	// ranking first in priority.
	res := e.Decide(probsFor(map[ecg.Class]float64{
		ecg.CD: 0.95, ecg.MI: 0.93,
	}))

	if res.Class != ecg.CD {
		t.Fatalf("class = %s, want CD", res.Class)
	}
	if len(res.Passing) != 2 {
		t.Fatalf("passing count = %d, want 2", len(res.Passing))
	}
	if res.Passing[0].Class != ecg.CD || res.Passing[1].Class != ecg.MI {
		t.Errorf("passing order = %s, %s; want CD, MI", res.Passing[0].Class, res.Passing[1].Class)
	}
	if res.RiskLevel != RiskModerate {
		t.Errorf("risk level = %s, want %s", res.RiskLevel, RiskModerate)
	}
	if res.RiskScore != 95 {
		t.Errorf("risk score = %d, want 95", res.RiskScore)
	}
	if res.Confidence != 95.0 {
		t.Errorf("confidence = %v, want 95", res.Confidence)
	}
}

func TestDecide_EqualMarginsResolveByPriority(t *testing.T) {
	e := New(ecg.ThresholdTable{
		ecg.MI: 0.5, ecg.STTC: 0.5, ecg.HYP: 0.5, ecg.CD: 0.5,
	}, 30)

	// STTC and CD clear the shared cutoff by the same margin; STTC is
	// earlier in the priority order.
	res := e.Decide(probsFor(map[ecg.Class]float64{
		ecg.STTC: 0.7, ecg.CD: 0.7,
	}))

	if res.Class != ecg.STTC {
		t.Fatalf("class = %s, want STTC", res.Class)
	}
}

func TestDecide_ExactThresholdPasses(t *testing.T) {
	e := New(ecg.DefaultThresholds(), 30)

	res := e.Decide(probsFor(map[ecg.Class]float64{ecg.MI: 0.92}))

	if res.Class != ecg.MI {
		t.Fatalf("class = %s, want MI (probability equal to cutoff must pass)", res.Class)
	}
	if res.RiskLevel != RiskHigh {
		t.Errorf("risk level = %s, want %s", res.RiskLevel, RiskHigh)
	}
}

func TestDecide_RiskLevels(t *testing.T) {
	e := New(ecg.ThresholdTable{
		ecg.MI: 0.5, ecg.STTC: 0.5, ecg.HYP: 0.5, ecg.CD: 0.5,
	}, 30)

	tests := []struct {
		class ecg.Class
		want  string
	}{
		{ecg.MI, RiskHigh},
		{ecg.STTC, RiskHigh},
		{ecg.HYP, RiskModerate},
		{ecg.CD, RiskModerate},
	}
	for _, tt := range tests {
		res := e.Decide(probsFor(map[ecg.Class]float64{tt.class: 0.9}))
		if res.Class != tt.class {
			t.Fatalf("class = %s, want %s", res.Class, tt.class)
		}
		if res.RiskLevel != tt.want {
			t.Errorf("%s: risk level = %s, want %s", tt.class, res.RiskLevel, tt.want)
		}
	}
}

func TestDecide_NormScoreCapped(t *testing.T) {
	e := New(ecg.DefaultThresholds(), 30)

	res := e.Decide(probsFor(map[ecg.Class]float64{ecg.NORM: 0.99}))

	if res.Class != ecg.NORM {
		t.Fatalf("class = %s, want NORM", res.Class)
	}
	if res.RiskScore != 29 { // 0.99 * 30, truncated
		t.Errorf("risk score = %d, want 29", res.RiskScore)
	}
	if res.Confidence != 99.0 {
		t.Errorf("confidence = %v, want 99", res.Confidence)
	}
}

func TestPassing_Margin(t *testing.T) {
	p := Passing{Class: ecg.MI, Probability: 0.95, Threshold: 0.92}
	if m := p.Margin(); m < 0.0299 || m > 0.0301 {
		t.Errorf("margin = %v, want 0.03", m)
	}
}
