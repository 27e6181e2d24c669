package watchdog

import (
	"reflect"
	"testing"
)

func seedGrid(t *testing.T, store *SQLiteStore, assets []Asset, dateKey string) {
	t.Helper()
	if err := InitializeGrid(store, assets, dateKey); err != nil {
		t.Fatal(err)
	}
}

func readGrid(t *testing.T, store *SQLiteStore) Grid {
	t.Helper()
	grid, err := store.ReadGrid()
	if err != nil {
		t.Fatal(err)
	}
	return grid
}

func TestInitializeGrid_SeedsCaptionHeaderAndAssets(t *testing.T) {
	store := openTestStore(t)
	assets := LegacyAssets()
	seedGrid(t, store, assets, "7/6/2025")

	grid := readGrid(t, store)
	if len(grid) != 2+len(assets) {
		t.Fatalf("expected %d rows, got %d", 2+len(assets), len(grid))
	}
	if grid[captionRowIdx][firstDateCol] != "REMARKS" {
		t.Fatalf("caption row missing: %v", grid[captionRowIdx])
	}
	if grid[headerRowIdx][firstDateCol] != "7/6/2025" {
		t.Fatalf("header date missing: %v", grid[headerRowIdx])
	}
	if grid[assetRowIdx][colName] != "Pump House I" || grid[assetRowIdx][colSerial] != "1" {
		t.Fatalf("first asset row wrong: %v", grid[assetRowIdx])
	}
}

func TestInitializeGrid_Idempotent(t *testing.T) {
	store := openTestStore(t)
	seedGrid(t, store, LegacyAssets(), "7/6/2025")
	before := readGrid(t, store)

	seedGrid(t, store, LegacyAssets(), "8/6/2025")
	after := readGrid(t, store)

	if !reflect.DeepEqual(before, after) {
		t.Fatal("second initialization must not change a populated grid")
	}
}

func TestResolveDateColumn_ExistingAndIdempotent(t *testing.T) {
	store := openTestStore(t)
	seedGrid(t, store, LegacyAssets(), "7/6/2025")

	grid := readGrid(t, store)
	col1, err := ResolveDateColumn(store, grid, "7/6/2025")
	if err != nil {
		t.Fatal(err)
	}
	if col1 != firstDateCol {
		t.Fatalf("expected col %d, got %d", firstDateCol, col1)
	}

	grid = readGrid(t, store)
	col2, err := ResolveDateColumn(store, grid, "7/6/2025")
	if err != nil {
		t.Fatal(err)
	}
	if col2 != col1 {
		t.Fatalf("not idempotent: %d vs %d", col1, col2)
	}
	if w := len(readGrid(t, store)[headerRowIdx]); w != firstDateCol+1 {
		t.Fatalf("header width changed: %d", w)
	}
}

func TestResolveDateColumn_AppendsNewDate(t *testing.T) {
	store := openTestStore(t)
	seedGrid(t, store, LegacyAssets(), "7/6/2025")

	grid := readGrid(t, store)
	col, err := ResolveDateColumn(store, grid, "8/6/2025")
	if err != nil {
		t.Fatal(err)
	}
	if col != firstDateCol+1 {
		t.Fatalf("expected appended col %d, got %d", firstDateCol+1, col)
	}
	header := readGrid(t, store)[headerRowIdx]
	if header[col] != "8/6/2025" {
		t.Fatalf("header cell not written: %v", header)
	}
	// Prior date column is untouched.
	if header[firstDateCol] != "7/6/2025" {
		t.Fatalf("existing header mutated: %v", header)
	}
}

func TestResolveDateColumn_PaddedHeaderStillMatches(t *testing.T) {
	store := openTestStore(t)
	seedGrid(t, store, LegacyAssets(), "07/06/2025")

	grid := readGrid(t, store)
	col, err := ResolveDateColumn(store, grid, "7/6/2025")
	if err != nil {
		t.Fatal(err)
	}
	if col != firstDateCol {
		t.Fatalf("padded header should resolve to the same column, got %d", col)
	}
}

func TestResolveAssetRow_ExistingAndIdempotent(t *testing.T) {
	store := openTestStore(t)
	assets := LegacyAssets()
	seedGrid(t, store, assets, "7/6/2025")

	grid := readGrid(t, store)
	row1, err := ResolveAssetRow(store, grid, assets[2])
	if err != nil {
		t.Fatal(err)
	}
	if row1 != assetRowIdx+2+1 {
		t.Fatalf("expected row %d, got %d", assetRowIdx+2+1, row1)
	}

	grid = readGrid(t, store)
	row2, err := ResolveAssetRow(store, grid, assets[2])
	if err != nil {
		t.Fatal(err)
	}
	if row2 != row1 {
		t.Fatalf("not idempotent: %d vs %d", row1, row2)
	}
	if n := len(readGrid(t, store)); n != 2+len(assets) {
		t.Fatalf("row count changed: %d", n)
	}
}

func TestResolveAssetRow_SameIdentityDifferentOriginSharesRow(t *testing.T) {
	store := openTestStore(t)
	assets := LegacyAssets()
	seedGrid(t, store, assets, "7/6/2025")

	twin := Asset{
		ID:     "999",
		Name:   assets[0].Name,
		Type:   assets[0].Type,
		Scheme: assets[0].Scheme,
		Zone:   "Zone 4",
		Origin: OriginCurrent,
	}
	grid := readGrid(t, store)
	rowLegacy, err := ResolveAssetRow(store, grid, assets[0])
	if err != nil {
		t.Fatal(err)
	}
	grid = readGrid(t, store)
	rowTwin, err := ResolveAssetRow(store, grid, twin)
	if err != nil {
		t.Fatal(err)
	}
	if rowTwin != rowLegacy {
		t.Fatalf("identical (scheme,name,type) must share a row: %d vs %d", rowLegacy, rowTwin)
	}
}

func TestResolveAssetRow_AppendsWithoutMutatingExistingRows(t *testing.T) {
	store := openTestStore(t)
	assets := LegacyAssets()
	seedGrid(t, store, assets, "7/6/2025")
	before := readGrid(t, store)

	newcomer := Asset{ID: "42", Name: "Pump House V", Type: "Direct", Scheme: "Naligram PWSS", Origin: OriginCurrent}
	grid := readGrid(t, store)
	row, err := ResolveAssetRow(store, grid, newcomer)
	if err != nil {
		t.Fatal(err)
	}
	if row != len(before)+1 {
		t.Fatalf("expected append at row %d, got %d", len(before)+1, row)
	}

	after := readGrid(t, store)
	for i := range before {
		if !reflect.DeepEqual(before[i], after[i]) {
			t.Fatalf("row %d mutated by append: %v vs %v", i+1, before[i], after[i])
		}
	}
	if after[row-1][colName] != "Pump House V" || after[row-1][colZone] != "N/A" {
		t.Fatalf("appended row wrong: %v", after[row-1])
	}
}

func TestResolveAssetRow_CaseSensitiveIdentity(t *testing.T) {
	store := openTestStore(t)
	assets := LegacyAssets()
	seedGrid(t, store, assets, "7/6/2025")

	renamed := assets[0]
	renamed.Name = "pump house i"
	grid := readGrid(t, store)
	row, err := ResolveAssetRow(store, grid, renamed)
	if err != nil {
		t.Fatal(err)
	}
	if row <= 2+len(assets) {
		t.Fatalf("case-variant identity must append a new row, got %d", row)
	}
}

func TestResolveDateColumn_MissingHeaderRowIsRepaired(t *testing.T) {
	store := openTestStore(t)
	// Empty store: no caption, no header. Resolution must create the header
	// cell rather than fail.
	grid := readGrid(t, store)
	col, err := ResolveDateColumn(store, grid, "7/6/2025")
	if err != nil {
		t.Fatal(err)
	}
	after := readGrid(t, store)
	if len(after) < headerRowIdx+1 || after[headerRowIdx][col] != "7/6/2025" {
		t.Fatalf("header cell not repaired: %v", after)
	}
}
