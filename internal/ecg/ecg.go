// Package ecg holds the domain types shared across the screening pipeline:
// the canonical 12-lead order, the 5-class label set, signal containers,
// and the per-request error taxonomy.
package ecg

// Class is one of the five screening output classes.
type Class string

const (
	CD   Class = "CD"   // conduction disturbance
	HYP  Class = "HYP"  // hypertrophy
	MI   Class = "MI"   // myocardial infarction
	NORM Class = "NORM" // normal
	STTC Class = "STTC" // ST-T change
)

// ClassOrder is the fixed index order of classifier outputs. Probability
// slices throughout the pipeline are aligned with this order.
var ClassOrder = []Class{CD, HYP, MI, NORM, STTC}

// DiseasePriority is the order disease classes are evaluated against their
// thresholds. It also breaks ties when two classes pass with equal margin.
// NORM is not thresholded; it is the default when nothing passes.
var DiseasePriority = []Class{MI, STTC, HYP, CD}

// DisplayNames maps class tags to human-readable names, used in log lines
// and user-facing messages.
var DisplayNames = map[Class]string{
	CD:   "Conduction Disturbance",
	HYP:  "Hypertrophy",
	MI:   "Myocardial Infarction",
	NORM: "Normal",
	STTC: "ST-T Change",
}

// ClassIndex returns the position of c in ClassOrder, or -1 if unknown.
func ClassIndex(c Class) int {
	for i, o := range ClassOrder {
		if o == c {
			return i
		}
	}
	return -1
}

// DefaultLeadOrder is the canonical clinical order of the 12 leads. Every
// signal container in the pipeline indexes leads by position in this order
// (or in the configured override of it).
var DefaultLeadOrder = []string{
	"I", "II", "III", "aVR", "aVL", "aVF",
	"V1", "V2", "V3", "V4", "V5", "V6",
}

// ThresholdTable maps disease classes to their calibrated probability
// cutoffs. NORM has no entry. Loaded once at startup, read-only after.
type ThresholdTable map[Class]float64

// DefaultThresholds are the calibrated per-class cutoffs.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		MI:   0.92,
		STTC: 0.78,
		HYP:  0.92,
		CD:   0.91,
	}
}

// LeadMap is a raw digitization result: lead name to sample sequence.
// Lengths may differ per lead and leads may be missing entirely.
type LeadMap map[string][]float32
