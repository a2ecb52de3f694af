package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/moznion/go-optional"
	baseengine "github.com/rxtech-lab/t0-trading/internal/engine"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"
)

type T0EngineV1TestSuite struct {
	suite.Suite
	engine  *T0EngineV1
	tempDir string
	ctrl    *gomock.Controller
}

func TestT0EngineV1Suite(t *testing.T) {
	suite.Run(t, new(T0EngineV1TestSuite))
}

func (suite *T0EngineV1TestSuite) SetupTest() {
	engine, err := NewT0EngineV1()
	suite.Require().NoError(err)
	suite.engine = engine
	suite.tempDir = suite.T().TempDir()
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *T0EngineV1TestSuite) initialize(config T0EngineV1Config) {
	content, err := yaml.Marshal(config)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.engine.Initialize(string(content)))
}

func (suite *T0EngineV1TestSuite) writeFile(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *T0EngineV1TestSuite) TestInitializeRejectsBadConfig() {
	err := suite.engine.Initialize("version: \"2.0.0\"\nstrategy:\n  mode: base_position\n")
	suite.Assert().Error(err)

	err = suite.engine.Initialize("{not yaml")
	suite.Assert().Error(err)
}

func (suite *T0EngineV1TestSuite) TestRunRequiresInitializeAndSnapshot() {
	_, err := suite.engine.Run(context.Background(), optional.None[baseengine.OnProgressCallback]())
	suite.Assert().Error(err)

	suite.initialize(TestConfig(types.StrategyModeBasePosition, 1_000_000))

	_, err = suite.engine.Run(context.Background(), optional.None[baseengine.OnProgressCallback]())
	suite.Assert().Error(err)
}

func (suite *T0EngineV1TestSuite) TestSetPathsValidateExistence() {
	suite.Assert().Error(suite.engine.SetSnapshotPath(filepath.Join(suite.tempDir, "missing.csv")))
	suite.Assert().Error(suite.engine.SetFillsPath(filepath.Join(suite.tempDir, "missing.csv")))

	path := suite.writeFile("snapshot.csv", "symbol,settled_qty,avg_cost\n600000,1000,10.0\n")
	suite.Assert().NoError(suite.engine.SetSnapshotPath(path))
}

// A base position of 1000 shares marked above cost produces one paired
// sell/buy-back suggestion at premium/discount targets.
func (suite *T0EngineV1TestSuite) TestRunBasePositionDay() {
	config := TestConfig(types.StrategyModeBasePosition, 1_000_000)
	// A one-symbol book always trips any concentration ratio below one.
	config.Risk.MaxConcentrationRatio.Enabled = false
	suite.initialize(config)

	snapshot := suite.writeFile("snapshot.csv",
		"symbol,settled_qty,avg_cost,mark_price\n"+
			"600000,1000,10.0,10.5\n")
	suite.Require().NoError(suite.engine.SetSnapshotPath(snapshot))
	suite.Require().NoError(suite.engine.SetReportFolder(filepath.Join(suite.tempDir, "results")))

	var stages []string
	callback := baseengine.OnProgressCallback(func(current, total int, stage string) error {
		stages = append(stages, stage)
		return nil
	})

	report, err := suite.engine.Run(context.Background(), optional.Some(callback))
	suite.Require().NoError(err)

	suite.Require().Len(report.Signals, 2)
	sell, buy := report.Signals[0], report.Signals[1]
	suite.Assert().Equal(types.SideSell, sell.Side)
	suite.Assert().Equal(int64(1000), sell.Quantity)
	suite.Assert().InDelta(10.521, sell.TargetPrice, 1e-9)
	suite.Assert().Equal(types.SideBuy, buy.Side)
	suite.Assert().InDelta(10.479, buy.TargetPrice, 1e-9)

	suite.Assert().Equal(types.RiskStatusOK, report.Summary.RiskStatus)
	suite.Assert().Len(stages, 6)

	_, err = os.Stat(filepath.Join(suite.tempDir, "results", "report.yaml"))
	suite.Assert().NoError(err)
	_, err = os.Stat(filepath.Join(suite.tempDir, "results", "fills.parquet"))
	suite.Assert().NoError(err)
}

// When aggregate exposure breaches the cap, the buy-back leg is suppressed
// while the sell leg passes.
func (suite *T0EngineV1TestSuite) TestRunExposureBreachSuppressesBuyBack() {
	suite.initialize(T0EngineV1Config{
		Version:  "1.0.0",
		Strategy: TestConfig(types.StrategyModeBasePosition, 0).Strategy,
		Risk:     TestConfig(types.StrategyModeBasePosition, 5_000).Risk,
	})

	snapshot := suite.writeFile("snapshot.csv",
		"symbol,settled_qty,avg_cost,mark_price\n"+
			"600000,1000,10.0,10.5\n")
	suite.Require().NoError(suite.engine.SetSnapshotPath(snapshot))

	report, err := suite.engine.Run(context.Background(), optional.None[baseengine.OnProgressCallback]())
	suite.Require().NoError(err)

	suite.Assert().Equal(types.RiskStatusRisk, report.Summary.RiskStatus)
	suite.Require().Len(report.Signals, 1)
	suite.Assert().Equal(types.SideSell, report.Signals[0].Side)
	suite.Assert().Equal(1, report.Signals[0].Priority)
}

func (suite *T0EngineV1TestSuite) TestRunPendingPairWithFills() {
	config := TestConfig(types.StrategyModePendingPair, 1_000_000)
	config.Risk.MaxConcentrationRatio.Enabled = false
	suite.initialize(config)

	snapshot := suite.writeFile("snapshot.csv",
		"symbol,settled_qty,avg_cost,mark_price\n"+
			"600000,1000,10.0,10.2\n")
	fills := suite.writeFile("fills.csv",
		"fill_id,symbol,side,quantity,price,timestamp\n"+
			"f1,600000,19,300,10.30,2026-08-28 09:31:00\n")
	suite.Require().NoError(suite.engine.SetSnapshotPath(snapshot))
	suite.Require().NoError(suite.engine.SetFillsPath(fills))

	report, err := suite.engine.Run(context.Background(), optional.None[baseengine.OnProgressCallback]())
	suite.Require().NoError(err)

	// The sold 300 needs a buy back.
	suite.Require().Len(report.Signals, 1)
	suite.Assert().Equal(types.SideBuy, report.Signals[0].Side)
	suite.Assert().Equal(int64(300), report.Signals[0].Quantity)

	// The sell realized (10.30 - 10.00) * 300.
	suite.Require().Len(report.Positions, 1)
	suite.Assert().InDelta(90.0, report.Positions[0].RealizedPnL, 1e-9)
	suite.Assert().Equal(int64(700), report.Positions[0].SettledQty)
}

func (suite *T0EngineV1TestSuite) TestRunFetchesMissingMarks() {
	suite.initialize(TestConfig(types.StrategyModeBasePosition, 1_000_000))

	snapshot := suite.writeFile("snapshot.csv",
		"symbol,settled_qty,avg_cost,mark_price\n"+
			"600000,1000,10.0,0\n"+
			"000001,500,20.0,19.5\n")
	suite.Require().NoError(suite.engine.SetSnapshotPath(snapshot))

	provider := mocks.NewMockProvider(suite.ctrl)
	provider.EXPECT().
		GetMarks(gomock.Any(), []string{"600000"}).
		Return(map[string]float64{"600000": 10.4}, nil)
	provider.EXPECT().Name().Return("mock").AnyTimes()
	suite.Require().NoError(suite.engine.SetMarksProvider(provider))

	report, err := suite.engine.Run(context.Background(), optional.None[baseengine.OnProgressCallback]())
	suite.Require().NoError(err)

	for _, position := range report.Positions {
		if position.Symbol == "600000" {
			suite.Assert().InDelta(10.4, position.MarkPrice, 1e-9)
			suite.Assert().InDelta(400.0, position.UnrealizedPnL, 1e-9)
		}
	}
}

func (suite *T0EngineV1TestSuite) TestRunAbortsWhenProgressCallbackFails() {
	suite.initialize(TestConfig(types.StrategyModeBasePosition, 1_000_000))

	snapshot := suite.writeFile("snapshot.csv", "symbol,settled_qty,avg_cost\n600000,1000,10.0\n")
	suite.Require().NoError(suite.engine.SetSnapshotPath(snapshot))

	callback := baseengine.OnProgressCallback(func(current, total int, stage string) error {
		return context.Canceled
	})

	_, err := suite.engine.Run(context.Background(), optional.Some(callback))
	suite.Assert().Error(err)
}
