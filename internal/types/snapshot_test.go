package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SnapshotRecordTestSuite struct {
	suite.Suite
}

func TestSnapshotRecordSuite(t *testing.T) {
	suite.Run(t, new(SnapshotRecordTestSuite))
}

func (suite *SnapshotRecordTestSuite) TestValidate() {
	r := SnapshotRecord{Symbol: "SZ000001", SettledQty: 1000, AvgCost: 10.0, MarkPrice: 10.5}
	suite.NoError(r.Validate())
}

func (suite *SnapshotRecordTestSuite) TestValidateMissingSymbol() {
	r := SnapshotRecord{SettledQty: 1000}
	suite.Error(r.Validate())
}

func (suite *SnapshotRecordTestSuite) TestValidateNegativeQty() {
	r := SnapshotRecord{Symbol: "SZ000001", SettledQty: -1}
	suite.Error(r.Validate())
}

func (suite *SnapshotRecordTestSuite) TestValidateFrozenExceedsSettled() {
	r := SnapshotRecord{Symbol: "SZ000001", SettledQty: 100, FrozenQty: 200}
	suite.Error(r.Validate())
}

func (suite *SnapshotRecordTestSuite) TestValidateZeroPositionAllowed() {
	r := SnapshotRecord{Symbol: "SZ000001"}
	suite.NoError(r.Validate())
}
