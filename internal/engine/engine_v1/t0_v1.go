package engine

import (
	"context"
	"os"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/datasource"
	engine "github.com/rxtech-lab/t0-trading/internal/engine"
	"github.com/rxtech-lab/t0-trading/internal/ledger"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/marks"
	"github.com/rxtech-lab/t0-trading/internal/report"
	"github.com/rxtech-lab/t0-trading/internal/risk"
	"github.com/rxtech-lab/t0-trading/internal/strategy"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// pipelineStages is the number of progress stages Run reports.
const pipelineStages = 6

// T0EngineV1 is the first engine implementation: one pass over one trading
// day's snapshot and fills, producing signals, alerts, and a report.
type T0EngineV1 struct {
	config        T0EngineV1Config
	initialized   bool
	logger        *logger.Logger
	strategy      *strategy.Engine
	risk          *risk.Controller
	marksProvider optional.Option[marks.Provider]
	snapshotPath  string
	fillsPath     string
	reportFolder  string
}

// assert that T0EngineV1 implements the Engine interface.
var _ engine.Engine = (*T0EngineV1)(nil)

func NewT0EngineV1() (*T0EngineV1, error) {
	log, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	return &T0EngineV1{
		config:        EmptyConfig(),
		logger:        log,
		marksProvider: optional.None[marks.Provider](),
	}, nil
}

// Initialize implements engine.Engine.
func (t *T0EngineV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &t.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := t.config.Validate(); err != nil {
		return err
	}

	strategyEngine, err := strategy.NewEngine(t.config.Strategy, t.logger)
	if err != nil {
		return err
	}

	controller, err := risk.NewController(t.config.Risk, t.logger)
	if err != nil {
		return err
	}

	t.strategy = strategyEngine
	t.risk = controller
	t.initialized = true

	return nil
}

// SetSnapshotPath implements engine.Engine.
func (t *T0EngineV1) SetSnapshotPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "snapshot file %s", path)
	}

	t.snapshotPath = path

	return nil
}

// SetFillsPath implements engine.Engine.
func (t *T0EngineV1) SetFillsPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "fills file %s", path)
	}

	t.fillsPath = path

	return nil
}

// SetMarksProvider implements engine.Engine. Overrides any provider the
// config would otherwise construct.
func (t *T0EngineV1) SetMarksProvider(provider marks.Provider) error {
	if provider == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "marks provider is nil")
	}

	t.marksProvider = optional.Some(provider)

	return nil
}

// SetReportFolder implements engine.Engine.
func (t *T0EngineV1) SetReportFolder(folder string) error {
	if folder == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "report folder is empty")
	}

	t.reportFolder = folder

	return nil
}

// Run implements engine.Engine.
func (t *T0EngineV1) Run(ctx context.Context, onProgress optional.Option[engine.OnProgressCallback]) (*report.Report, error) {
	if err := t.preRunCheck(); err != nil {
		return nil, err
	}

	progress := func(current int, stage string) error {
		if onProgress.IsNone() {
			return nil
		}
		return onProgress.Unwrap()(current, pipelineStages, stage)
	}

	source, err := datasource.NewDataSource(t.logger)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	journal, err := ledger.NewJournal(t.logger)
	if err != nil {
		return nil, err
	}
	defer journal.Close()

	if err := journal.Initialize(); err != nil {
		return nil, err
	}

	book := ledger.NewLedger(t.logger)
	book.AttachJournal(journal)

	if err := progress(1, "decoding snapshot"); err != nil {
		return nil, err
	}

	records, snapshotErrors, err := source.ReadSnapshot(t.snapshotPath)
	if err != nil {
		return nil, err
	}

	if err := book.ApplySnapshot(records); err != nil {
		return nil, err
	}

	if err := progress(2, "applying fills"); err != nil {
		return nil, err
	}

	var (
		batch      ledger.BatchResult
		fillErrors []datasource.RowError
	)

	if t.fillsPath != "" {
		fills, rowErrors, err := source.ReadFills(t.fillsPath)
		if err != nil {
			return nil, err
		}

		fillErrors = rowErrors
		batch = book.ApplyFills(fills)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := progress(3, "fetching marks"); err != nil {
		return nil, err
	}

	if err := t.fetchMarks(ctx, book); err != nil {
		return nil, err
	}

	if err := progress(4, "generating signals"); err != nil {
		return nil, err
	}

	appliedFills := make([]types.Fill, 0, len(batch.Applied))
	for _, applied := range batch.Applied {
		appliedFills = append(appliedFills, applied.Fill)
	}

	signals := t.strategy.Generate(book.Snapshot(), appliedFills)

	if err := progress(5, "evaluating risk"); err != nil {
		return nil, err
	}

	result := t.risk.Evaluate(book.Snapshot(), signals)

	stats, err := journal.T0Stats()
	if err != nil {
		return nil, err
	}

	runReport := report.NewReport(
		t.config.Strategy.Mode,
		result.Status,
		book.Snapshot(),
		result.Signals,
		result.Alerts,
		batch.Skipped,
		stats,
	)
	runReport.SnapshotErrors = snapshotErrors
	runReport.FillErrors = fillErrors

	if err := progress(6, "writing report"); err != nil {
		return nil, err
	}

	if t.reportFolder != "" {
		if _, err := runReport.Write(t.reportFolder); err != nil {
			return nil, err
		}

		if err := journal.Write(t.reportFolder); err != nil {
			return nil, err
		}
	}

	t.logger.Info("run complete",
		zap.String("risk_status", string(result.Status)),
		zap.Int("signals", len(result.Signals)),
		zap.Int("alerts", len(result.Alerts)),
	)

	return runReport, nil
}

// fetchMarks fills marks missing from the snapshot through the configured
// provider. Symbols that already carry a mark are not refreshed.
func (t *T0EngineV1) fetchMarks(ctx context.Context, book *ledger.Ledger) error {
	provider, err := t.resolveMarksProvider()
	if err != nil {
		return err
	}
	if provider == nil {
		return nil
	}

	var missing []string
	for _, position := range book.Snapshot() {
		if position.MarkPrice <= 0 {
			missing = append(missing, position.Symbol)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	prices, err := provider.GetMarks(ctx, missing)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeProviderFailure, err, "marks provider %s", provider.Name())
	}

	t.logger.Debug("marks fetched",
		zap.String("provider", provider.Name()),
		zap.Int("requested", len(missing)),
		zap.Int("resolved", len(prices)),
	)

	book.MarkPrices(prices)

	return nil
}

func (t *T0EngineV1) resolveMarksProvider() (marks.Provider, error) {
	if t.marksProvider.IsSome() {
		return t.marksProvider.Unwrap(), nil
	}

	switch t.config.Marks.Provider {
	case "":
		return nil, nil
	case "static":
		return marks.NewStaticProvider(t.config.Marks.Path.Unwrap())
	case "polygon":
		return marks.NewPolygonProvider(t.config.Marks.APIKey.TakeOr(""), t.logger), nil
	case "binance":
		return marks.NewBinanceProvider(t.logger), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown marks provider %q", t.config.Marks.Provider)
	}
}

func (t *T0EngineV1) preRunCheck() error {
	if !t.initialized {
		return errors.New(errors.ErrCodeMissingParameter, "engine is not initialized")
	}
	if t.snapshotPath == "" {
		return errors.New(errors.ErrCodeMissingParameter, "snapshot path is not set")
	}

	return nil
}
