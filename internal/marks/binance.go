package marks

import (
	"context"
	"strconv"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"go.uber.org/zap"
)

// BinanceProvider resolves marks from Binance spot ticker prices. Price
// endpoints need no credentials.
type BinanceProvider struct {
	client *binance.Client
	logger *logger.Logger
}

func NewBinanceProvider(log *logger.Logger) *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
		logger: log,
	}
}

// GetMarks implements Provider.
func (p *BinanceProvider) GetMarks(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	prices, err := p.client.NewListPricesService().Symbols(symbols).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFailure, "failed to fetch prices from Binance", err)
	}

	result := make(map[string]float64, len(prices))

	for _, price := range prices {
		value, err := strconv.ParseFloat(price.Price, 64)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("unparseable price from Binance",
					zap.String("symbol", price.Symbol),
					zap.String("price", price.Price),
				)
			}

			continue
		}

		result[price.Symbol] = value
	}

	return result, nil
}

// Name implements Provider.
func (p *BinanceProvider) Name() string {
	return "binance"
}
