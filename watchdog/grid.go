package watchdog

import (
	"fmt"
	"strconv"
)

// Grid is a dense snapshot of the ledger. Grid[0] is ledger row 1 (the group
// caption), Grid[1] is row 2 (the column headers), rows from Grid[2] on hold
// one asset each. Rows may be ragged, matching what the store returns.
type Grid [][]string

// Fixed grid geometry. Row constants are 0-based snapshot indexes; the store
// interface itself addresses rows 1-based.
const (
	captionRowIdx = 0
	headerRowIdx  = 1
	assetRowIdx   = 2

	colSerial = 0
	colScheme = 1
	colZone   = 2
	colName   = 3
	colType   = 4

	firstDateCol = 5
)

// LedgerStore is the persistence boundary for the grid. Rows are 1-based,
// columns 0-based. Appends only ever grow the grid at its edge; previously
// assigned cells are never moved.
type LedgerStore interface {
	ReadGrid() (Grid, error)
	AppendRow(values []string) (int, error)
	AppendColumnHeader(value string) (int, error)
	WriteCellValue(row int, col int, value string) error
	WriteCellFormat(row int, col int, color CellColor) error
}

// ResolveDateColumn returns the 0-based column whose header cell denotes
// dateKey, appending a new header cell after the last populated column when
// absent. Idempotent against the same grid state. Header cells that do not
// parse strictly as dates are never matched, so the identity columns and
// blank cells are safe to scan over.
func ResolveDateColumn(store LedgerStore, grid Grid, dateKey string) (int, error) {
	var header []string
	if len(grid) > headerRowIdx {
		header = grid[headerRowIdx]
	}
	for i, cell := range header {
		if SameDateKey(cell, dateKey) {
			return i, nil
		}
	}
	col, err := store.AppendColumnHeader(dateKey)
	if err != nil {
		return 0, fmt.Errorf("append date column %q: %w", dateKey, err)
	}
	return col, nil
}

// ResolveAssetRow returns the 1-based ledger row for the asset's identity,
// appending a new identity row when absent. Matching is exact string equality
// on scheme, name, and type. Callers must pass a freshly read snapshot:
// earlier appends in the same run are only visible through a re-read, and a
// stale snapshot would duplicate the row.
func ResolveAssetRow(store LedgerStore, grid Grid, asset Asset) (int, error) {
	key := asset.Key()
	for i := assetRowIdx; i < len(grid); i++ {
		row := grid[i]
		if cellAt(row, colScheme) == key.Scheme &&
			cellAt(row, colName) == key.Name &&
			cellAt(row, colType) == key.Type {
			return i + 1, nil
		}
	}
	zone := asset.Zone
	if zone == "" {
		zone = "N/A"
	}
	values := make([]string, colType+1)
	values[colScheme] = key.Scheme
	values[colZone] = zone
	values[colName] = key.Name
	values[colType] = key.Type
	row, err := store.AppendRow(values)
	if err != nil {
		return 0, fmt.Errorf("append row for %s/%s/%s: %w", key.Scheme, key.Name, key.Type, err)
	}
	return row, nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// InitializeGrid seeds an empty ledger with the caption row, the header row
// carrying today's date column, and one identity row per known asset. A store
// that already holds more than the caption row is left untouched, so the
// bootstrap is idempotent across runs.
func InitializeGrid(store LedgerStore, assets []Asset, dateKey string) error {
	grid, err := store.ReadGrid()
	if err != nil {
		return fmt.Errorf("read grid: %w", err)
	}
	if len(grid) > 1 {
		return nil
	}

	caption := make([]string, firstDateCol+1)
	caption[firstDateCol] = "REMARKS"
	rows := [][]string{
		caption,
		{"Sl No.", "Scheme Name", "Zone", "Pump House", "Pump House Type", dateKey},
	}
	for i, a := range assets {
		zone := a.Zone
		if zone == "" {
			zone = "N/A"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), a.Scheme, zone, a.Name, a.Type, ""})
	}
	for _, values := range rows {
		if _, err := store.AppendRow(values); err != nil {
			return fmt.Errorf("seed ledger: %w", err)
		}
	}
	return nil
}
