// Command gnnhf screens a printed 12-lead ECG image for heart disease.
// It takes one image path, writes a single JSON result record to stdout,
// and exits non-zero on any failure outcome. Logs go to stderr.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/PranavKarne/GNN-HF/internal/classifier"
	"github.com/PranavKarne/GNN-HF/internal/config"
	"github.com/PranavKarne/GNN-HF/internal/decision"
	"github.com/PranavKarne/GNN-HF/internal/digitizer"
	"github.com/PranavKarne/GNN-HF/internal/digitizer/grid"
	"github.com/PranavKarne/GNN-HF/internal/digitizer/remote"
	"github.com/PranavKarne/GNN-HF/internal/logging"
	"github.com/PranavKarne/GNN-HF/internal/pipeline"
	"github.com/PranavKarne/GNN-HF/internal/report"
	"github.com/PranavKarne/GNN-HF/internal/standardize"
	"github.com/PranavKarne/GNN-HF/internal/validity"
)

func main() {
	cfg := config.Load()
	logging.Init(true, logging.ParseLevel(cfg.Log.Level))

	if len(os.Args) < 2 {
		fail(report.Failure("no_input", "usage: gnnhf <ecg-image>"))
	}
	imagePath := os.Args[1]

	// The disease scorer is the pipeline's reason to exist: a load failure
	// aborts the process.
	frames := cfg.Signal.TargetRate * cfg.Signal.DurationSec
	disease, err := classifier.NewDiseaseScorer(cfg.Models.DiseasePath, frames, len(cfg.Signal.LeadOrder))
	if err != nil {
		slog.Error("disease model load failed", "path", cfg.Models.DiseasePath, "error", err)
		fail(report.Failure(report.CodeModelLoad, err.Error()))
	}
	defer disease.Close()

	// The validity scorer is optional: without it the gate fails open.
	var gateScorer validity.Scorer
	if v, err := classifier.NewValidityScorer(cfg.Models.ValidatorPath); err != nil {
		slog.Warn("validity model not loaded, gate will fail open",
			"path", cfg.Models.ValidatorPath, "error", err)
	} else {
		defer v.Close()
		gateScorer = v
	}

	gridExt, err := grid.New(cfg.Grid.Rows, cfg.Grid.Cols, cfg.Grid.TraceCutoff,
		cfg.Grid.AmpScale, cfg.Grid.RawLength, cfg.Signal.LeadOrder)
	if err != nil {
		slog.Error("invalid grid configuration", "error", err)
		fail(report.Failure(report.CodeInternal, err.Error()))
	}

	var preferred digitizer.ServiceExtractor
	if cfg.Digitizer.ServiceURL != "" {
		preferred = remote.New(cfg.Digitizer.ServiceURL, cfg.Digitizer.ServiceToken,
			remote.WithTimeout(cfg.Digitizer.ServiceTimeout))
	}

	p := pipeline.New(
		validity.New(gateScorer, cfg.Models.ValidityCutoff),
		digitizer.New(preferred, gridExt, cfg.Signal.LeadOrder, cfg.Digitizer.ContrastBoost),
		standardize.New(cfg.Signal.SourceRate, cfg.Signal.TargetRate, cfg.Signal.DurationSec),
		disease,
		decision.New(cfg.Decision.Thresholds, cfg.Decision.NormRiskCap),
	)

	ctx := context.Background()
	if cfg.Decision.RequestLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Decision.RequestLimit)
		defer cancel()
	}

	rec := p.Run(ctx, imagePath)
	if err := report.Write(os.Stdout, rec); err != nil {
		slog.Error("failed to write result", "error", err)
		os.Exit(1)
	}
	if !rec.Success {
		os.Exit(1)
	}
}

// fail emits a failure record and exits. Used only before the pipeline can
// run; per-request failures come back through the pipeline as records.
func fail(rec report.Record) {
	report.Write(os.Stdout, rec)
	os.Exit(1)
}
