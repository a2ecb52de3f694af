package mocks

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/t0-trading/internal/types"
)

// DataGenerator generates realistic snapshot and fill data for testing and
// benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how positions and fills are generated.
type GeneratorConfig struct {
	// Symbols are the instruments to generate data for.
	Symbols []string
	// StartTime is the timestamp of the first fill.
	StartTime time.Time
	// Interval is the duration between consecutive fills per symbol.
	Interval time.Duration
	// FillsPerSymbol is the number of fills generated per symbol.
	FillsPerSymbol int
	// BasePrice is the starting price for all symbols.
	BasePrice float64
	// Volatility controls price movement between fills (0.002 = 0.2%).
	Volatility float64
	// LotsHeld is the base position size in board lots per symbol.
	LotsHeld int64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbols:        []string{"600000", "000001", "600519"},
		StartTime:      time.Date(2024, 1, 2, 9, 30, 0, 0, time.Local),
		Interval:       time.Minute,
		FillsPerSymbol: 20,
		BasePrice:      10.0,
		Volatility:     0.002,
		LotsHeld:       50,
	}
}

// GenerateSnapshot creates one snapshot record per configured symbol, with
// the cost basis jittered around the base price.
func (g *DataGenerator) GenerateSnapshot(config GeneratorConfig) []types.SnapshotRecord {
	records := make([]types.SnapshotRecord, 0, len(config.Symbols))

	for _, symbol := range config.Symbols {
		cost := config.BasePrice * (1 + (g.rng.Float64()*2-1)*config.Volatility*10)

		records = append(records, types.SnapshotRecord{
			Symbol:     symbol,
			SettledQty: config.LotsHeld * 100,
			AvgCost:    roundToDecimals(cost, 4),
			MarkPrice:  roundToDecimals(cost*(1+(g.rng.Float64()*2-1)*config.Volatility*5), 4),
		})
	}

	return records
}

// GenerateFills creates alternating sell/buy fill sequences per symbol with
// prices following a random walk around the base price. Quantities are
// always whole board lots, so generated days satisfy the ledger's
// reconciliation invariants.
func (g *DataGenerator) GenerateFills(config GeneratorConfig) []types.Fill {
	fills := make([]types.Fill, 0, len(config.Symbols)*config.FillsPerSymbol)

	for _, symbol := range config.Symbols {
		price := config.BasePrice
		current := config.StartTime

		for i := 0; i < config.FillsPerSymbol; i++ {
			u1 := g.rng.Float64()
			u2 := g.rng.Float64()
			z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

			price *= 1 + config.Volatility*z
			if price <= 0 {
				price = config.BasePrice * 0.5
			}

			side := types.SideSell
			if i%2 == 1 {
				side = types.SideBuy
			}

			lots := 1 + g.rng.Int63n(5)

			fills = append(fills, types.Fill{
				ID:        fmt.Sprintf("%s-%06d", symbol, i),
				Symbol:    symbol,
				Side:      side,
				Quantity:  lots * 100,
				Price:     roundToDecimals(price, 4),
				Timestamp: current,
			})

			current = current.Add(config.Interval)
		}
	}

	return fills
}

// roundToDecimals rounds a float to the specified number of decimal places.
func roundToDecimals(value float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(value*shift) / shift
}
