package marks

import (
	"context"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"go.uber.org/zap"
)

// PolygonProvider resolves marks from Polygon's previous close aggregate.
// A previous close is a coarse mark, but the pipeline only needs a price in
// the right neighborhood for exposure and P&L ratios.
type PolygonProvider struct {
	client *polygon.Client
	logger *logger.Logger
}

func NewPolygonProvider(apiKey string, log *logger.Logger) *PolygonProvider {
	return &PolygonProvider{
		client: polygon.New(apiKey),
		logger: log,
	}
}

// GetMarks implements Provider. Symbols Polygon cannot resolve are logged
// and skipped; one unknown ticker must not starve the rest of the book.
func (p *PolygonProvider) GetMarks(ctx context.Context, symbols []string) (map[string]float64, error) {
	result := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		response, err := p.client.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{
			Ticker: symbol,
		})
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("failed to fetch previous close",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}

			continue
		}

		if len(response.Results) == 0 {
			continue
		}

		result[symbol] = response.Results[0].Close
	}

	return result, nil
}

// Name implements Provider.
func (p *PolygonProvider) Name() string {
	return "polygon"
}
