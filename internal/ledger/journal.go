package ledger

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Journal keeps a queryable record of every fill the ledger saw during one
// run, applied or skipped, in an in-memory DuckDB database. It backs the
// per-symbol T0 statistics and the parquet export.
type Journal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// JournalEntry is one recorded fill.
type JournalEntry struct {
	Fill        types.Fill
	Status      string
	Reason      string
	RealizedPnL float64
}

func NewJournal(logger *logger.Logger) (*Journal, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Journal{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the fills table.
func (j *Journal) Initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			fill_id TEXT,
			symbol TEXT,
			side TEXT,
			quantity BIGINT,
			price DOUBLE,
			timestamp TIMESTAMP,
			batch_id TEXT,
			status TEXT,
			reason TEXT,
			realized_pnl DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fills table: %w", err)
	}

	return nil
}

// Record writes one fill row. Fills arriving without an id get a generated
// one so the journal stays joinable with the report.
func (j *Journal) Record(fill types.Fill, status, reason string, realized float64) error {
	fillID := fill.ID
	if fillID == "" {
		fillID = uuid.New().String()
	}

	query, args, err := j.sq.Insert("fills").
		Columns("fill_id", "symbol", "side", "quantity", "price", "timestamp", "batch_id", "status", "reason", "realized_pnl").
		Values(fillID, fill.Symbol, string(fill.Side), fill.Quantity, fill.Price, fill.Timestamp, fill.BatchID, status, reason, realized).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := j.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to record fill: %w", err)
	}

	return nil
}

// Entries returns the journal in application order.
func (j *Journal) Entries() ([]JournalEntry, error) {
	query, args, err := j.sq.Select("fill_id", "symbol", "side", "quantity", "price", "timestamp", "batch_id", "status", "reason", "realized_pnl").
		From("fills").
		OrderBy("timestamp", "fill_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fills: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var entry JournalEntry
		var side string

		err := rows.Scan(
			&entry.Fill.ID,
			&entry.Fill.Symbol,
			&side,
			&entry.Fill.Quantity,
			&entry.Fill.Price,
			&entry.Fill.Timestamp,
			&entry.Fill.BatchID,
			&entry.Status,
			&entry.Reason,
			&entry.RealizedPnL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fill: %w", err)
		}

		entry.Fill.Side = types.Side(side)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// T0Stats pairs the day's applied buys and sells per symbol in time order
// and reports the matched quantity and round-trip profit, plus the leftover
// unpaired quantity. Pairing is first-in-first-out on both legs.
func (j *Journal) T0Stats() ([]types.T0Stat, error) {
	entries, err := j.Entries()
	if err != nil {
		return nil, err
	}

	type legs struct {
		buys  []types.Fill
		sells []types.Fill
	}

	bySymbol := make(map[string]*legs)
	var symbols []string

	for _, entry := range entries {
		if entry.Status != "applied" {
			continue
		}

		symbolLegs, ok := bySymbol[entry.Fill.Symbol]
		if !ok {
			symbolLegs = &legs{}
			bySymbol[entry.Fill.Symbol] = symbolLegs
			symbols = append(symbols, entry.Fill.Symbol)
		}

		switch entry.Fill.Side {
		case types.SideBuy:
			symbolLegs.buys = append(symbolLegs.buys, entry.Fill)
		case types.SideSell:
			symbolLegs.sells = append(symbolLegs.sells, entry.Fill)
		}
	}

	sort.Strings(symbols)

	stats := make([]types.T0Stat, 0, len(symbols))
	for _, symbol := range symbols {
		stats = append(stats, matchT0(symbol, bySymbol[symbol].buys, bySymbol[symbol].sells))
	}

	return stats, nil
}

// matchT0 consumes buy and sell legs FIFO. A T0 round trip on an existing
// holding is sell-then-buy-back, but the profit is side-symmetric so both
// directions are matched the same way.
func matchT0(symbol string, buys, sells []types.Fill) types.T0Stat {
	stat := types.T0Stat{Symbol: symbol}

	for _, buy := range buys {
		stat.BuyQty += buy.Quantity
	}
	for _, sell := range sells {
		stat.SellQty += sell.Quantity
	}

	profit := decimal.Zero
	buyIdx, sellIdx := 0, 0
	buyLeft, sellLeft := int64(0), int64(0)

	for buyIdx < len(buys) && sellIdx < len(sells) {
		if buyLeft == 0 {
			buyLeft = buys[buyIdx].Quantity
		}
		if sellLeft == 0 {
			sellLeft = sells[sellIdx].Quantity
		}

		matched := buyLeft
		if sellLeft < matched {
			matched = sellLeft
		}

		spread := decimal.NewFromFloat(sells[sellIdx].Price).
			Sub(decimal.NewFromFloat(buys[buyIdx].Price))
		profit = profit.Add(spread.Mul(decimal.NewFromInt(matched)))

		stat.MatchedQty += matched
		buyLeft -= matched
		sellLeft -= matched

		if buyLeft == 0 {
			buyIdx++
		}
		if sellLeft == 0 {
			sellIdx++
		}
	}

	stat.MatchedProfit, _ = profit.Float64()
	stat.PendingQty = stat.BuyQty - stat.SellQty
	if stat.PendingQty < 0 {
		stat.PendingQty = -stat.PendingQty
	}

	return stat
}

// Realized sums the realized P&L recorded for a symbol, if any fills were
// applied for it.
func (j *Journal) Realized(symbol string) (optional.Option[float64], error) {
	query, args, err := j.sq.Select("SUM(realized_pnl)", "COUNT(*)").
		From("fills").
		Where(squirrel.Eq{"symbol": symbol, "status": "applied"}).
		ToSql()
	if err != nil {
		return optional.None[float64](), fmt.Errorf("failed to build query: %w", err)
	}

	var total sql.NullFloat64
	var count int64
	if err := j.db.QueryRow(query, args...).Scan(&total, &count); err != nil {
		return optional.None[float64](), fmt.Errorf("failed to query realized pnl: %w", err)
	}

	if count == 0 {
		return optional.None[float64](), nil
	}

	return optional.Some(total.Float64), nil
}

// Write exports the journal to fills.parquet under the given folder.
func (j *Journal) Write(folder string) error {
	// Squirrel doesn't support COPY, use raw SQL.
	path := filepath.Join(folder, "fills.parquet")
	if _, err := j.db.Exec(fmt.Sprintf(`COPY fills TO '%s' (FORMAT PARQUET)`, path)); err != nil {
		return fmt.Errorf("failed to export fills: %w", err)
	}

	if j.logger != nil {
		j.logger.Debug("journal exported", zap.String("path", path))
	}

	return nil
}

// Cleanup truncates the fills table.
func (j *Journal) Cleanup() error {
	if _, err := j.db.Exec(`DELETE FROM fills`); err != nil {
		return fmt.Errorf("failed to cleanup fills: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
