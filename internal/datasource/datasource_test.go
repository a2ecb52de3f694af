package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DataSourceTestSuite struct {
	suite.Suite
	datasource *DuckDBDataSource
	logger     *logger.Logger
	tempDir    string
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupSuite() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.logger = log
}

func (suite *DataSourceTestSuite) SetupTest() {
	datasource, err := NewDataSource(suite.logger)
	suite.Require().NoError(err)
	suite.datasource = datasource
	suite.tempDir = suite.T().TempDir()
}

func (suite *DataSourceTestSuite) TearDownTest() {
	suite.Require().NoError(suite.datasource.Close())
}

func (suite *DataSourceTestSuite) writeCSV(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *DataSourceTestSuite) TestReadSnapshotEnglishHeaders() {
	path := suite.writeCSV("snapshot.csv",
		"symbol,settled_qty,avg_cost,mark_price,frozen_qty\n"+
			"600000,1000,10.25,10.50,200\n"+
			"000001,500,20.00,19.80,0\n")

	records, rowErrors, err := suite.datasource.ReadSnapshot(path)
	suite.Require().NoError(err)
	suite.Assert().Empty(rowErrors)
	suite.Require().Len(records, 2)

	suite.Assert().Equal("600000", records[0].Symbol)
	suite.Assert().Equal(int64(1000), records[0].SettledQty)
	suite.Assert().InDelta(10.25, records[0].AvgCost, 1e-9)
	suite.Assert().InDelta(10.50, records[0].MarkPrice, 1e-9)
	suite.Assert().Equal(int64(200), records[0].FrozenQty)
}

func (suite *DataSourceTestSuite) TestReadSnapshotChineseHeaders() {
	path := suite.writeCSV("snapshot_cn.csv",
		"证券代码,持仓数量,成本价,最新价,冻结数量\n"+
			"600519,300,1500.00,1520.00,0\n")

	records, rowErrors, err := suite.datasource.ReadSnapshot(path)
	suite.Require().NoError(err)
	suite.Assert().Empty(rowErrors)
	suite.Require().Len(records, 1)

	suite.Assert().Equal("600519", records[0].Symbol)
	suite.Assert().Equal(int64(300), records[0].SettledQty)
	suite.Assert().InDelta(1500.00, records[0].AvgCost, 1e-9)
}

func (suite *DataSourceTestSuite) TestReadSnapshotOptionalColumnsDefault() {
	path := suite.writeCSV("snapshot_min.csv",
		"symbol,settled_qty,avg_cost\n"+
			"600000,1000,10.00\n")

	records, rowErrors, err := suite.datasource.ReadSnapshot(path)
	suite.Require().NoError(err)
	suite.Assert().Empty(rowErrors)
	suite.Require().Len(records, 1)
	suite.Assert().Equal(int64(0), records[0].FrozenQty)
	suite.Assert().Zero(records[0].MarkPrice)
}

func (suite *DataSourceTestSuite) TestReadSnapshotReportsBadRows() {
	path := suite.writeCSV("snapshot_bad.csv",
		"symbol,settled_qty,avg_cost,frozen_qty\n"+
			"600000,1000,10.00,0\n"+
			"600001,abc,10.00,0\n"+
			"600002,100,10.00,500\n")

	records, rowErrors, err := suite.datasource.ReadSnapshot(path)
	suite.Require().NoError(err)
	suite.Require().Len(records, 1)
	suite.Require().Len(rowErrors, 2)
	suite.Assert().Equal(2, rowErrors[0].Row)
	suite.Assert().Equal(3, rowErrors[1].Row)
}

func (suite *DataSourceTestSuite) TestReadFillsSideCodes() {
	path := suite.writeCSV("fills.csv",
		"fill_id,symbol,side,quantity,price,timestamp,batch_id\n"+
			"f1,600000,18,100,10.10,2026-08-28 09:31:00,b1\n"+
			"f2,600000,19,100,10.30,2026-08-28 09:45:00,\n"+
			"f3,600000,1,200,10.15,2026-08-28 10:00:00,\n"+
			"f4,600000,2,200,10.35,2026-08-28 10:15:00,\n"+
			"f5,600000,BUY,300,10.20,2026-08-28 10:30:00,\n"+
			"f6,600000,SELL,300,10.40,2026-08-28 10:45:00,\n")

	fills, rowErrors, err := suite.datasource.ReadFills(path)
	suite.Require().NoError(err)
	suite.Assert().Empty(rowErrors)
	suite.Require().Len(fills, 6)

	expected := []types.Side{
		types.SideBuy, types.SideSell,
		types.SideBuy, types.SideSell,
		types.SideBuy, types.SideSell,
	}
	for i, fill := range fills {
		suite.Assert().Equal(expected[i], fill.Side, "fill %d", i)
	}

	suite.Assert().Equal("b1", fills[0].BatchID)
	suite.Assert().Equal(time.Date(2026, 8, 28, 9, 31, 0, 0, time.Local), fills[0].Timestamp)
}

func (suite *DataSourceTestSuite) TestReadFillsChineseHeaders() {
	path := suite.writeCSV("fills_cn.csv",
		"成交编号,证券代码,买卖方向,成交数量,成交价格,成交时间,委托编号\n"+
			"f1,600519,买入,100,1510.00,2026-08-28 09:31:00,o1\n"+
			"f2,600519,卖出,100,1525.00,2026-08-28 13:05:00,o2\n")

	fills, rowErrors, err := suite.datasource.ReadFills(path)
	suite.Require().NoError(err)
	suite.Assert().Empty(rowErrors)
	suite.Require().Len(fills, 2)
	suite.Assert().Equal(types.SideBuy, fills[0].Side)
	suite.Assert().Equal(types.SideSell, fills[1].Side)
}

func (suite *DataSourceTestSuite) TestReadFillsReportsBadRows() {
	path := suite.writeCSV("fills_bad.csv",
		"fill_id,symbol,side,quantity,price,timestamp\n"+
			"f1,600000,18,100,10.10,2026-08-28 09:31:00\n"+
			"f2,600000,99,100,10.10,2026-08-28 09:32:00\n"+
			"f3,600000,18,-5,10.10,2026-08-28 09:33:00\n"+
			"f4,600000,18,100,10.10,not-a-time\n")

	fills, rowErrors, err := suite.datasource.ReadFills(path)
	suite.Require().NoError(err)
	suite.Require().Len(fills, 1)
	suite.Require().Len(rowErrors, 3)
	suite.Assert().Contains(rowErrors[0].Reason, "unknown side code")
	suite.Assert().Contains(rowErrors[2].Reason, "unrecognized timestamp")
}

func (suite *DataSourceTestSuite) TestUnsupportedFormat() {
	path := suite.writeCSV("fills.xlsx", "not a csv")

	_, _, err := suite.datasource.ReadFills(path)
	suite.Require().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeUnsupportedFormat))
}

func (suite *DataSourceTestSuite) TestMissingFile() {
	_, _, err := suite.datasource.ReadSnapshot(filepath.Join(suite.tempDir, "missing.csv"))
	suite.Require().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}
