package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToLot() {
	suite.Equal(int64(1000), RoundToLot(1000, BoardLot))
	suite.Equal(int64(900), RoundToLot(950, BoardLot))
	suite.Equal(int64(0), RoundToLot(99, BoardLot))
	suite.Equal(int64(0), RoundToLot(0, BoardLot))
}

func (suite *UtilsTestSuite) TestRoundToLotNegativeQty() {
	suite.Equal(int64(0), RoundToLot(-100, BoardLot))
}

func (suite *UtilsTestSuite) TestRoundToLotZeroLot() {
	suite.Equal(int64(123), RoundToLot(123, 0))
}

func (suite *UtilsTestSuite) TestMinQty() {
	suite.Equal(int64(1), MinQty(1, 2))
	suite.Equal(int64(1), MinQty(2, 1))
	suite.Equal(int64(5), MinQty(5, 5))
}
