package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// Config holds all pipeline configuration. It is built once at startup and
// passed read-only into every component constructor; no component reads
// environment state on its own.
type Config struct {
	Models    ModelConfig
	Signal    SignalConfig
	Grid      GridConfig
	Digitizer DigitizerConfig
	Decision  DecisionConfig
	Log       LogConfig
}

// ModelConfig holds classifier weight locations and gating settings.
type ModelConfig struct {
	DiseasePath    string // 5-class disease scorer (required)
	ValidatorPath  string // binary ECG-or-not scorer (optional)
	ValidityCutoff float64
}

// SignalConfig holds sampling parameters for standardization.
type SignalConfig struct {
	LeadOrder   []string
	SourceRate  int // digitizer output rate (Hz)
	TargetRate  int // classifier training rate (Hz)
	DurationSec int
}

// GridConfig holds the printed-ECG layout assumption for the fallback
// extractor.
type GridConfig struct {
	Rows        int
	Cols        int
	TraceCutoff uint8   // grayscale intensity below which a pixel is trace
	AmpScale    float64 // peak amplitude after normalization
	RawLength   int     // samples per lead produced by the extractor
}

// DigitizerConfig holds the preferred external digitization service
// settings. An empty ServiceURL disables the preferred path entirely.
type DigitizerConfig struct {
	ServiceURL     string
	ServiceToken   string
	ServiceTimeout time.Duration
	ContrastBoost  float64 // percentage passed to contrast enhancement
}

// DecisionConfig holds calibrated decision parameters.
type DecisionConfig struct {
	Thresholds   ecg.ThresholdTable
	NormRiskCap  float64 // max risk score for a NORM outcome
	RequestLimit time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables with the calibrated
// defaults baked in.
func Load() Config {
	return Config{
		Models: ModelConfig{
			DiseasePath:    getenv("GNNHF_MODEL_PATH", "models/heart_disease_cnn_gnn.onnx"),
			ValidatorPath:  getenv("GNNHF_VALIDATOR_PATH", "models/ecg_validator.onnx"),
			ValidityCutoff: getenvFloat("GNNHF_VALIDITY_CUTOFF", 0.5),
		},
		Signal: SignalConfig{
			LeadOrder:   getenvLeads("GNNHF_LEAD_ORDER"),
			SourceRate:  getenvInt("GNNHF_SOURCE_RATE", 500),
			TargetRate:  getenvInt("GNNHF_TARGET_RATE", 100),
			DurationSec: getenvInt("GNNHF_DURATION_SEC", 10),
		},
		Grid: GridConfig{
			Rows:        getenvInt("GNNHF_GRID_ROWS", 6),
			Cols:        getenvInt("GNNHF_GRID_COLS", 2),
			TraceCutoff: uint8(getenvInt("GNNHF_TRACE_CUTOFF", 120)),
			AmpScale:    getenvFloat("GNNHF_AMP_SCALE", 1.5),
			RawLength:   getenvInt("GNNHF_RAW_LENGTH", 1000),
		},
		Digitizer: DigitizerConfig{
			ServiceURL:     os.Getenv("GNNHF_DIGITIZER_URL"),
			ServiceToken:   os.Getenv("GNNHF_DIGITIZER_TOKEN"),
			ServiceTimeout: getenvDuration("GNNHF_DIGITIZER_TIMEOUT", 30*time.Second),
			ContrastBoost:  getenvFloat("GNNHF_CONTRAST_BOOST", 50),
		},
		Decision: DecisionConfig{
			Thresholds:   loadThresholds(),
			NormRiskCap:  getenvFloat("GNNHF_NORM_RISK_CAP", 30),
			RequestLimit: getenvDuration("GNNHF_REQUEST_TIMEOUT", 0),
		},
		Log: LogConfig{
			Level: getenv("GNNHF_LOG_LEVEL", "info"),
		},
	}
}

// loadThresholds reads per-class cutoff overrides on top of the calibrated
// defaults.
func loadThresholds() ecg.ThresholdTable {
	t := ecg.DefaultThresholds()
	for _, c := range ecg.DiseasePriority {
		key := "GNNHF_THRESHOLD_" + strings.ToUpper(string(c))
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
				t[c] = f
			}
		}
	}
	return t
}

// getenvLeads parses a comma-separated lead order override. Anything that
// is not exactly 12 non-empty names falls back to the canonical order.
func getenvLeads(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return ecg.DefaultLeadOrder
	}
	parts := strings.Split(v, ",")
	leads := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return ecg.DefaultLeadOrder
		}
		leads = append(leads, p)
	}
	if len(leads) != len(ecg.DefaultLeadOrder) {
		return ecg.DefaultLeadOrder
	}
	return leads
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
