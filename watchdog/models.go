package watchdog

import "time"

// Origin identifies which source system an asset comes from. Legacy assets are
// fixed metadata; current assets arrive from the live roster API each run.
type Origin string

const (
	OriginLegacy  Origin = "legacy"
	OriginCurrent Origin = "current"
)

// Asset is one monitored pump house. For ledger purposes its identity is the
// (Scheme, Name, Type) triple, never ID: both source systems must land on the
// same row when they describe the same site.
type Asset struct {
	ID        string
	Name      string
	Type      string
	Zone      string
	Scheme    string
	Origin    Origin
	StationID string // legacy telemetry station id, empty for current assets
}

// Reading is one labeled telemetry measurement. Qualifier disambiguates
// same-label metrics for different periods ("Today"/"Yesterday") and is empty
// when the metric has no period. Annotation carries free-form metadata such as
// "Last Recorded (04-06-2025 17:43:18)". Value stays textual and is parsed at
// the point of use.
type Reading struct {
	Label      string
	Qualifier  string
	Value      string
	Annotation string
}

// ReadingSet is the unordered reading collection for one asset.
type ReadingSet []Reading

// ActivityEvent is one device state sample. The sequence for an asset is
// ordered most-recent-first; TransitionAt is when the state last changed.
type ActivityEvent struct {
	Timestamp    time.Time
	IsOn         bool
	TransitionAt time.Time
}

type Severity string

const (
	SeverityWhite  Severity = "WHITE"
	SeverityYellow Severity = "YELLOW"
	SeverityOrange Severity = "ORANGE"
	SeverityRed    Severity = "RED"
)

// Verdict is the rule engine output for one asset and run.
type Verdict struct {
	Remark   string
	Severity Severity
}

// LedgerCell is one populated cell of the ledger grid. Row is 1-based and Col
// is 0-based, matching the store interface addressing. Value and Color are
// written by two separate operations and may be updated independently.
type LedgerCell struct {
	ID        uint   `gorm:"primaryKey"`
	Row       int    `gorm:"uniqueIndex:uniq_row_col;not null"`
	Col       int    `gorm:"uniqueIndex:uniq_row_col;not null"`
	Value     string `gorm:"type:text"`
	Color     string `gorm:"size:32"`
	UpdatedAt time.Time
}

// LedgerRun is the audit record for one completed run.
type LedgerRun struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       string `gorm:"index;size:36"`
	StartedAt   time.Time
	EndedAt     time.Time
	DateKey     string `gorm:"size:16"`
	AssetsTotal int
	AssetsOK    int
	FetchErrors int
	WriteErrors int
	LastError   string `gorm:"type:text"`
}
