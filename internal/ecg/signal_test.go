package ecg

import "testing"

func TestNewSignal_UnequalLengths(t *testing.T) {
	_, err := NewSignal([][]float32{{1, 2, 3}, {1, 2}})
	if err == nil {
		t.Fatal("expected error for unequal lead lengths")
	}
}

func TestNewSignal_NoLeads(t *testing.T) {
	_, err := NewSignal(nil)
	if err == nil {
		t.Fatal("expected error for empty signal")
	}
}

func TestSignal_Shape(t *testing.T) {
	sig := ZeroSignal(4, 12)
	if sig.Frames() != 4 || sig.Leads() != 12 {
		t.Fatalf("expected 4x12, got %dx%d", sig.Frames(), sig.Leads())
	}
}

func TestSignal_TensorLayout(t *testing.T) {
	// 2 frames × 3 leads; lead-major storage must flatten frame-major.
	sig, err := NewSignal([][]float32{
		{10, 11}, // lead 0
		{20, 21}, // lead 1
		{30, 31}, // lead 2
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []float32{10, 20, 30, 11, 21, 31}
	got := sig.Tensor()
	if len(got) != len(want) {
		t.Fatalf("tensor length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tensor[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClassIndex(t *testing.T) {
	tests := []struct {
		class Class
		want  int
	}{
		{CD, 0}, {HYP, 1}, {MI, 2}, {NORM, 3}, {STTC, 4}, {Class("bogus"), -1},
	}
	for _, tt := range tests {
		if got := ClassIndex(tt.class); got != tt.want {
			t.Errorf("ClassIndex(%s) = %d, want %d", tt.class, got, tt.want)
		}
	}
}

func TestDefaultThresholds_DiseaseClassesOnly(t *testing.T) {
	th := DefaultThresholds()
	if len(th) != 4 {
		t.Fatalf("expected 4 thresholds, got %d", len(th))
	}
	if _, ok := th[NORM]; ok {
		t.Fatal("NORM must not have a calibration threshold")
	}
	for c, v := range th {
		if v <= 0 || v >= 1 {
			t.Errorf("threshold for %s out of range: %v", c, v)
		}
	}
}
