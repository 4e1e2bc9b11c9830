// Package report defines the structured result record emitted on stdout,
// one per request, for both success and failure outcomes.
package report

import (
	"encoding/json"
	"io"
	"math"
)

// Error codes surfaced in failure records.
const (
	CodeInvalidECG     = "invalid_ecg_image"
	CodeImageRead      = "image_read_failed"
	CodeDigitization   = "digitization_failed"
	CodeClassification = "classification_failed"
	CodeModelLoad      = "model_load_failed"
	CodeInternal       = "internal_error"
)

// ThresholdDetail describes one disease class that crossed its calibrated
// threshold. Probability and Threshold keep full precision so the margin
// stays auditable.
type ThresholdDetail struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
}

// Record is the single structured result of a screening request. Failure
// records carry only Error/Message (plus the validation fields when
// rejection was the cause); pointer fields keep absent values out of the
// JSON entirely.
type Record struct {
	Success              bool               `json:"success"`
	PredictedClass       string             `json:"predicted_class,omitempty"`
	RiskScore            *int               `json:"risk_score,omitempty"`
	RiskLevel            string             `json:"risk_level,omitempty"`
	Confidence           *float64           `json:"confidence,omitempty"`
	Probabilities        map[string]float64 `json:"probabilities,omitempty"`
	ThresholdDetails     []ThresholdDetail  `json:"threshold_details,omitempty"`
	ValidationConfidence *float64           `json:"validation_confidence,omitempty"`
	IsValidECG           *bool              `json:"is_valid_ecg,omitempty"`
	Warning              string             `json:"warning,omitempty"`
	Error                string             `json:"error,omitempty"`
	Message              string             `json:"message,omitempty"`
}

// Failure builds a failure record with the given error code and
// human-readable message.
func Failure(code, message string) Record {
	return Record{Success: false, Error: code, Message: message}
}

// Percent converts a 0–1 probability to a percentage rounded to 2 decimals,
// the form every surfaced probability takes.
func Percent(p float64) float64 {
	return Round2(p * 100)
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Write encodes the record as a single JSON line on w.
func Write(w io.Writer, rec Record) error {
	return json.NewEncoder(w).Encode(rec)
}
