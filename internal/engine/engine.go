package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/marks"
	"github.com/rxtech-lab/t0-trading/internal/report"
)

// OnProgressCallback is called as the pipeline advances through its stages.
// Returning an error aborts the run.
type OnProgressCallback func(current int, total int, stage string) error

// Engine runs the snapshot → fills → signals → risk → report pipeline.
type Engine interface {
	// Initialize the engine with the given YAML configuration content.
	Initialize(config string) error
	// SetSnapshotPath sets the path to the broker position snapshot file.
	SetSnapshotPath(path string) error
	// SetFillsPath sets the path to the intraday fill export. Optional; a
	// run without fills reports the snapshot as-is.
	SetFillsPath(path string) error
	// SetMarksProvider sets the provider used to fill marks the snapshot
	// did not carry. Optional.
	SetMarksProvider(provider marks.Provider) error
	// SetReportFolder sets where the report and journal export are written.
	SetReportFolder(folder string) error
	// Run executes the pipeline and returns the report.
	Run(ctx context.Context, onProgress optional.Option[OnProgressCallback]) (*report.Report, error)
}
