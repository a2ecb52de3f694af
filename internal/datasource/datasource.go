package datasource

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/t0-trading/internal/logger"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
	"go.uber.org/zap"
)

// RowError reports a single input row that could not be decoded. Row numbers
// are 1-based over the data rows, excluding the header.
type RowError struct {
	Row    int    `yaml:"row" json:"row"`
	Reason string `yaml:"reason" json:"reason"`
}

// DuckDBDataSource decodes broker snapshot and fill exports. Files are read
// through an in-memory DuckDB so CSV dialect detection (delimiters, quoting,
// encodings) is DuckDB's problem, not ours; cell parsing and header
// localization happen in Go.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewDataSource(logger *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// ReadSnapshot decodes a position snapshot export. Rows that fail to decode
// or validate are returned as RowErrors, not dropped silently and not fatal.
func (d *DuckDBDataSource) ReadSnapshot(path string) ([]types.SnapshotRecord, []RowError, error) {
	rows, err := d.readAll(path)
	if err != nil {
		return nil, nil, err
	}

	var (
		records   []types.SnapshotRecord
		rowErrors []RowError
	)

	for i, row := range rows {
		record, err := decodeSnapshotRow(row)
		if err == nil {
			err = record.Validate()
		}

		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}

		records = append(records, record)
	}

	if d.logger != nil {
		d.logger.Debug("snapshot decoded",
			zap.String("path", path),
			zap.Int("records", len(records)),
			zap.Int("errors", len(rowErrors)),
		)
	}

	return records, rowErrors, nil
}

// ReadFills decodes a fill export, normalizing side codes on the way.
func (d *DuckDBDataSource) ReadFills(path string) ([]types.Fill, []RowError, error) {
	rows, err := d.readAll(path)
	if err != nil {
		return nil, nil, err
	}

	var (
		fills     []types.Fill
		rowErrors []RowError
	)

	for i, row := range rows {
		fill, err := decodeFillRow(row)
		if err == nil {
			err = fill.Validate()
		}

		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}

		fills = append(fills, fill)
	}

	if d.logger != nil {
		d.logger.Debug("fills decoded",
			zap.String("path", path),
			zap.Int("fills", len(fills)),
			zap.Int("errors", len(rowErrors)),
		)
	}

	return fills, rowErrors, nil
}

// Close closes the underlying database.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

// readAll loads every cell as text keyed by canonical column name. Columns
// with no canonical mapping are dropped here.
func (d *DuckDBDataSource) readAll(path string) ([]map[string]string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported file format: %s", path)
	}

	// Squirrel can't parameterize table functions, use raw SQL. all_varchar
	// keeps DuckDB from guessing column types so parsing stays in one place.
	query := fmt.Sprintf(`SELECT * FROM read_csv_auto('%s', all_varchar=true)`, path)

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to resolve columns", err)
	}

	canonical := make([]string, len(columns))
	for i, column := range columns {
		canonical[i] = canonicalColumn(column)
	}

	var result []map[string]string

	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		scan := make([]interface{}, len(columns))
		for i := range cells {
			scan[i] = &cells[i]
		}

		if err := rows.Scan(scan...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		row := make(map[string]string, len(columns))
		for i, name := range canonical {
			if name == "" || !cells[i].Valid {
				continue
			}
			row[name] = strings.TrimSpace(cells[i].String)
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

func decodeSnapshotRow(row map[string]string) (types.SnapshotRecord, error) {
	record := types.SnapshotRecord{Symbol: row["symbol"]}

	var err error
	if record.SettledQty, err = parseInt(row, "settled_qty", true); err != nil {
		return record, err
	}
	if record.FrozenQty, err = parseInt(row, "frozen_qty", false); err != nil {
		return record, err
	}
	if record.AvgCost, err = parseFloat(row, "avg_cost", true); err != nil {
		return record, err
	}
	if record.MarkPrice, err = parseFloat(row, "mark_price", false); err != nil {
		return record, err
	}

	return record, nil
}

func decodeFillRow(row map[string]string) (types.Fill, error) {
	fill := types.Fill{
		ID:      row["fill_id"],
		Symbol:  row["symbol"],
		BatchID: row["batch_id"],
	}

	side, err := normalizeSide(row["side"])
	if err != nil {
		return fill, err
	}
	fill.Side = side

	if fill.Quantity, err = parseInt(row, "quantity", true); err != nil {
		return fill, err
	}
	if fill.Price, err = parseFloat(row, "price", true); err != nil {
		return fill, err
	}
	if fill.Timestamp, err = parseTimestamp(row["timestamp"]); err != nil {
		return fill, err
	}

	return fill, nil
}

func parseInt(row map[string]string, column string, required bool) (int64, error) {
	raw, ok := row[column]
	if !ok || raw == "" {
		if required {
			return 0, errors.Newf(errors.ErrCodeMissingColumn, "missing required column %s", column)
		}
		return 0, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeDecodeFailed, "column %s: %q is not an integer", column, raw)
	}

	return value, nil
}

func parseFloat(row map[string]string, column string, required bool) (float64, error) {
	raw, ok := row[column]
	if !ok || raw == "" {
		if required {
			return 0, errors.Newf(errors.ErrCodeMissingColumn, "missing required column %s", column)
		}
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeDecodeFailed, "column %s: %q is not a number", column, raw)
	}

	return value, nil
}

// timestampLayouts covers the formats broker terminals emit. Time-only cells
// are anchored to today's date; the ledger only ever sees one trading day.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"20060102 15:04:05",
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.Newf(errors.ErrCodeMissingColumn, "missing required column timestamp")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}

	if clock, err := time.ParseInLocation("15:04:05", raw, time.Local); err == nil {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local), nil
	}

	return time.Time{}, errors.Newf(errors.ErrCodeDecodeFailed, "unrecognized timestamp %q", raw)
}
