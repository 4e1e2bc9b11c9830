package gnnhf

import "path/filepath"

type options struct {
	modelDir      string
	diseasePath   string
	validatorPath string
	noValidator   bool

	serviceURL   string
	serviceToken string

	thresholds  map[string]float64
	sourceRate  int
	targetRate  int
	durationSec int

	gridRows      int
	gridCols      int
	traceCutoff   uint8
	ampScale      float64
	rawLength     int
	contrastBoost float64

	validityCutoff float64
	normRiskCap    float64
}

// Option configures a Screener instance.
type Option func(*options)

// WithModelDir sets the directory containing model files.
// Expects: heart_disease_cnn_gnn.onnx, ecg_validator.onnx.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithModelPaths sets explicit paths for the disease and validator models.
// Use this when model files aren't in the default directory layout.
func WithModelPaths(disease, validator string) Option {
	return func(o *options) {
		o.diseasePath = disease
		o.validatorPath = validator
	}
}

// WithoutValidator skips loading the validity model entirely; every request
// then passes the gate fail-open.
func WithoutValidator() Option {
	return func(o *options) {
		o.noValidator = true
	}
}

// WithDigitizerService enables the preferred external digitization path.
// The grid extractor remains the fallback.
func WithDigitizerService(url, token string) Option {
	return func(o *options) {
		o.serviceURL = url
		o.serviceToken = token
	}
}

// WithThresholds overrides calibrated per-class cutoffs. Keys are disease
// class tags (MI, STTC, HYP, CD); unknown keys are ignored.
func WithThresholds(t map[string]float64) Option {
	return func(o *options) {
		for k, v := range t {
			o.thresholds[k] = v
		}
	}
}

// WithRates overrides the digitizer source rate, classifier target rate,
// and signal duration in seconds.
func WithRates(source, target, durationSec int) Option {
	return func(o *options) {
		o.sourceRate = source
		o.targetRate = target
		o.durationSec = durationSec
	}
}

func defaultOptions() options {
	return options{
		thresholds: map[string]float64{
			"MI": 0.92, "STTC": 0.78, "HYP": 0.92, "CD": 0.91,
		},
		sourceRate:     500,
		targetRate:     100,
		durationSec:    10,
		gridRows:       6,
		gridCols:       2,
		traceCutoff:    120,
		ampScale:       1.5,
		rawLength:      1000,
		contrastBoost:  50,
		validityCutoff: 0.5,
		normRiskCap:    30,
	}
}

// resolvePaths determines the disease and validator model file paths from
// the configured options. Explicit paths take precedence over modelDir.
func resolvePaths(o options) (disease, validator string) {
	if o.diseasePath != "" {
		return o.diseasePath, o.validatorPath
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	return filepath.Join(dir, "heart_disease_cnn_gnn.onnx"),
		filepath.Join(dir, "ecg_validator.onnx")
}
