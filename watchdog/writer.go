package watchdog

import "fmt"

// CellColor is an RGB background color with components in [0,1], the form the
// ledger store's formatting API expects.
type CellColor struct {
	Red   float64
	Green float64
	Blue  float64
}

func (c CellColor) String() string {
	return fmt.Sprintf("%.2f,%.2f,%.2f", c.Red, c.Green, c.Blue)
}

var severityColors = map[Severity]CellColor{
	SeverityRed:    {Red: 1, Green: 0, Blue: 0},
	SeverityOrange: {Red: 1, Green: 0.65, Blue: 0},
	SeverityYellow: {Red: 1, Green: 1, Blue: 0},
	SeverityWhite:  {Red: 1, Green: 1, Blue: 1},
}

// SeverityColor maps a verdict severity to its cell background. Unknown
// severities fall back to the neutral white.
func SeverityColor(s Severity) CellColor {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return severityColors[SeverityWhite]
}

// WriteCell records a verdict into the resolved cell: the remark as the cell
// value, the severity as a background format change. The two writes are
// separate store operations and both must succeed; a failure in either leaves
// the cell unresolved for this date and is reported to the caller.
func WriteCell(store LedgerStore, row int, col int, v Verdict) error {
	if err := store.WriteCellValue(row, col, v.Remark); err != nil {
		return fmt.Errorf("value write at (%d,%d): %w", row, col, err)
	}
	if err := store.WriteCellFormat(row, col, SeverityColor(v.Severity)); err != nil {
		return fmt.Errorf("format write at (%d,%d): %w", row, col, err)
	}
	return nil
}
