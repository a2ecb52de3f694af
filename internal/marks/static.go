package marks

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rxtech-lab/t0-trading/pkg/errors"
)

// StaticProvider serves marks from a JSON file mapping symbol to price.
// It is the offline path: the trader exports quotes from their terminal
// once and runs the pipeline without touching any market data API.
type StaticProvider struct {
	prices map[string]float64
}

func NewStaticProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read marks file %s", path)
	}

	var prices map[string]float64
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode marks file %s", path)
	}

	return &StaticProvider{prices: prices}, nil
}

// GetMarks implements Provider.
func (p *StaticProvider) GetMarks(_ context.Context, symbols []string) (map[string]float64, error) {
	result := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		if price, ok := p.prices[symbol]; ok && price > 0 {
			result[symbol] = price
		}
	}

	return result, nil
}

// Name implements Provider.
func (p *StaticProvider) Name() string {
	return "static"
}
