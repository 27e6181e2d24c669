package watchdog

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore persists the ledger grid as sparse cells in SQLite. Only
// populated cells are stored; ReadGrid rebuilds the dense snapshot with
// ragged rows, the same shape a spreadsheet range read would return.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&LedgerCell{}, &LedgerRun{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ReadGrid() (Grid, error) {
	var cells []LedgerCell
	if err := s.db.Order("row asc, col asc").Find(&cells).Error; err != nil {
		return nil, err
	}
	maxRow := 0
	rowWidth := make(map[int]int)
	for _, c := range cells {
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col+1 > rowWidth[c.Row] {
			rowWidth[c.Row] = c.Col + 1
		}
	}
	grid := make(Grid, maxRow)
	for r := 1; r <= maxRow; r++ {
		grid[r-1] = make([]string, rowWidth[r])
	}
	for _, c := range cells {
		grid[c.Row-1][c.Col] = c.Value
	}
	return grid, nil
}

// AppendRow creates the next row after the last populated one and fills its
// non-empty cells. Returns the new 1-based row index.
func (s *SQLiteStore) AppendRow(values []string) (int, error) {
	row := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var n struct{ N int }
		if err := tx.Model(&LedgerCell{}).Select("COALESCE(MAX(row), 0) AS n").Scan(&n).Error; err != nil {
			return err
		}
		row = n.N + 1
		for col, v := range values {
			if v == "" {
				continue
			}
			if err := tx.Create(&LedgerCell{Row: row, Col: col, Value: v}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return row, nil
}

// AppendColumnHeader writes value into the header row immediately after its
// last populated column. Returns the new 0-based column index.
func (s *SQLiteStore) AppendColumnHeader(value string) (int, error) {
	col := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var n struct{ N int }
		if err := tx.Model(&LedgerCell{}).
			Select("COALESCE(MAX(col), -1) AS n").
			Where("row = ?", headerRowIdx+1).
			Scan(&n).Error; err != nil {
			return err
		}
		col = n.N + 1
		return tx.Create(&LedgerCell{Row: headerRowIdx + 1, Col: col, Value: value}).Error
	})
	if err != nil {
		return 0, err
	}
	return col, nil
}

func (s *SQLiteStore) WriteCellValue(row int, col int, value string) error {
	if row < 1 || col < 0 {
		return fmt.Errorf("invalid cell address row=%d col=%d", row, col)
	}
	var cell LedgerCell
	err := s.db.Where("row = ? AND col = ?", row, col).First(&cell).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&LedgerCell{Row: row, Col: col, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&LedgerCell{}).
		Where("id = ?", cell.ID).
		Update("value", value).Error
}

func (s *SQLiteStore) WriteCellFormat(row int, col int, color CellColor) error {
	if row < 1 || col < 0 {
		return fmt.Errorf("invalid cell address row=%d col=%d", row, col)
	}
	var cell LedgerCell
	err := s.db.Where("row = ? AND col = ?", row, col).First(&cell).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&LedgerCell{Row: row, Col: col, Color: color.String()}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&LedgerCell{}).
		Where("id = ?", cell.ID).
		Update("color", color.String()).Error
}

// RecordRun appends the audit record for a completed run.
func (s *SQLiteStore) RecordRun(run LedgerRun) error {
	return s.db.Create(&run).Error
}
