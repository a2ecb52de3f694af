package mocks

import (
	"testing"

	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerateSnapshot() {
	generator := NewDataGenerator(42)
	config := DefaultConfig()

	records := generator.GenerateSnapshot(config)
	suite.Require().Len(records, len(config.Symbols))

	for _, record := range records {
		suite.Assert().NoError(record.Validate())
		suite.Assert().Equal(config.LotsHeld*100, record.SettledQty)
		suite.Assert().Greater(record.AvgCost, 0.0)
		suite.Assert().Greater(record.MarkPrice, 0.0)
	}
}

func (suite *DataGeneratorTestSuite) TestGenerateFills() {
	generator := NewDataGenerator(42)
	config := DefaultConfig()

	fills := generator.GenerateFills(config)
	suite.Require().Len(fills, len(config.Symbols)*config.FillsPerSymbol)

	for _, fill := range fills {
		suite.Assert().NoError(fill.Validate())
		suite.Assert().Zero(fill.Quantity%100, "quantity must be whole lots")
	}
}

func (suite *DataGeneratorTestSuite) TestDeterministicWithSameSeed() {
	first := NewDataGenerator(7).GenerateFills(DefaultConfig())
	second := NewDataGenerator(7).GenerateFills(DefaultConfig())

	suite.Assert().Equal(first, second)
}

func (suite *DataGeneratorTestSuite) TestSellsNeverExceedBasePosition() {
	generator := NewDataGenerator(99)
	config := DefaultConfig()

	fills := generator.GenerateFills(config)

	available := make(map[string]int64)
	for _, symbol := range config.Symbols {
		available[symbol] = config.LotsHeld * 100
	}

	// Intraday buys are virtual and unsellable the same day, so only sells
	// drain the available quantity.
	for _, fill := range fills {
		if fill.Side != types.SideSell {
			continue
		}

		available[fill.Symbol] -= fill.Quantity
		suite.Require().GreaterOrEqual(available[fill.Symbol], int64(0))
	}
}
