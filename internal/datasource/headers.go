package datasource

import (
	"strings"

	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
)

// Broker exports arrive with either Chinese or English headers depending on
// which terminal produced them. Both spellings map onto one canonical column
// name before any row is decoded; unknown columns are dropped.
var canonicalColumns = map[string]string{
	// shared
	"证券代码": "symbol",
	"symbol": "symbol",

	// snapshot
	"持仓数量":        "settled_qty",
	"当前拥股":        "settled_qty",
	"settled_qty": "settled_qty",
	"成本价":         "avg_cost",
	"持仓成本":        "avg_cost",
	"avg_cost":    "avg_cost",
	"最新价":         "mark_price",
	"市价":          "mark_price",
	"mark_price":  "mark_price",
	"冻结数量":        "frozen_qty",
	"frozen_qty":  "frozen_qty",

	// fills
	"成交编号":      "fill_id",
	"fill_id":   "fill_id",
	"买卖方向":      "side",
	"操作":        "side",
	"side":      "side",
	"成交数量":      "quantity",
	"quantity":  "quantity",
	"成交价格":      "price",
	"成交均价":      "price",
	"price":     "price",
	"成交时间":      "timestamp",
	"timestamp": "timestamp",
	"委托编号":      "batch_id",
	"batch_id":  "batch_id",
}

// canonicalColumn resolves a raw CSV header to its canonical name. Returns
// the empty string for columns the decoder does not consume.
func canonicalColumn(raw string) string {
	return canonicalColumns[strings.ToLower(strings.TrimSpace(raw))]
}

// sideCodes covers the 迅投 terminal dictionary (18/19), the short numeric
// convention (1/2), and plain English/Chinese words.
var sideCodes = map[string]types.Side{
	"18":   types.SideBuy,
	"19":   types.SideSell,
	"1":    types.SideBuy,
	"2":    types.SideSell,
	"buy":  types.SideBuy,
	"sell": types.SideSell,
	"买":    types.SideBuy,
	"买入":   types.SideBuy,
	"卖":    types.SideSell,
	"卖出":   types.SideSell,
}

// normalizeSide maps a raw side cell to a Side.
func normalizeSide(raw string) (types.Side, error) {
	side, ok := sideCodes[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", errors.Newf(errors.ErrCodeDecodeFailed, "unknown side code %q", raw)
	}

	return side, nil
}
