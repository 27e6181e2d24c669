package watchdog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RunnerConfig struct {
	DBPath   string
	JobLabel string
	Debug    bool

	LegacyBaseURL  string
	CurrentBaseURL string

	// SyslogAddr receives the end-of-run notification. Empty disables it.
	SyslogAddr string

	// PaceDelay is the mandatory gap between one asset's full cycle and the
	// next, respecting downstream rate limits. Global, not per call.
	PaceDelay time.Duration

	// AssetTimeout bounds one asset's telemetry fetches. On expiry the asset
	// gets the fetch-failure verdict instead of stalling the run.
	AssetTimeout time.Duration

	// Timezone the calendar day is reckoned in. Defaults to Asia/Kolkata.
	Timezone string

	// LegacyAssets overrides the built-in legacy roster when non-empty.
	LegacyAssets []Asset
}

type Runner struct {
	cfg       RunnerConfig
	store     LedgerStore
	telemetry TelemetryProvider
	roster    RosterSource
	notifier  Notifier
	loc       *time.Location

	closeStore func() error
	pace       func(time.Duration)
	now        func() time.Time
}

func (r *Runner) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

type runStats struct {
	AssetsTotal int
	AssetsOK    int
	FetchErrors int
	WriteErrors int
	BySeverity  map[Severity]int
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("DBPath is required")
	}
	if strings.TrimSpace(cfg.JobLabel) == "" {
		return nil, fmt.Errorf("JobLabel is required")
	}
	if cfg.PaceDelay <= 0 {
		cfg.PaceDelay = 30 * time.Second
	}
	if cfg.AssetTimeout <= 0 {
		cfg.AssetTimeout = 90 * time.Second
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
	}

	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	telemetry := NewHTTPTelemetry(cfg.LegacyBaseURL, cfg.CurrentBaseURL, cfg.AssetTimeout)
	var notifier Notifier = NopNotifier{}
	if strings.TrimSpace(cfg.SyslogAddr) != "" {
		notifier = NewSyslogNotifier(cfg.SyslogAddr, 3*time.Second)
	}

	return &Runner{
		cfg:        cfg,
		store:      store,
		telemetry:  telemetry,
		roster:     telemetry,
		notifier:   notifier,
		loc:        loc,
		closeStore: store.Close,
		pace:       time.Sleep,
		now:        time.Now,
	}, nil
}

func (r *Runner) Close() error {
	if r == nil || r.closeStore == nil {
		return nil
	}
	err := r.closeStore()
	r.closeStore = nil
	return err
}

// RunOnce processes every asset once: fetch, evaluate, resolve, write. Assets
// are strictly sequential in input order; per-asset failures degrade to a
// recorded verdict or a logged skip and never abort the run.
func (r *Runner) RunOnce() error {
	start := r.now()
	runID := uuid.NewString()
	stats := &runStats{BySeverity: make(map[Severity]int)}
	var lastErr string

	today := start.In(r.loc)
	yesterday := today.AddDate(0, 0, -1)
	dateKey := FormatDateKey(today)

	r.debugf("run start: id=%s job=%s date=%s", runID, r.cfg.JobLabel, dateKey)

	legacy := r.cfg.LegacyAssets
	if len(legacy) == 0 {
		legacy = LegacyAssets()
	}
	rosterCtx, cancel := context.WithTimeout(context.Background(), r.cfg.AssetTimeout)
	current, err := r.roster.FetchAssets(rosterCtx)
	cancel()
	if err != nil {
		// Legacy assets still get processed; the live roster rejoins next run.
		log.Printf("fetch roster: %v", err)
		lastErr = err.Error()
	}
	assets := make([]Asset, 0, len(legacy)+len(current))
	assets = append(assets, legacy...)
	assets = append(assets, current...)
	stats.AssetsTotal = len(assets)

	if err := InitializeGrid(r.store, assets, dateKey); err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}

	grid, err := r.store.ReadGrid()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	col, err := ResolveDateColumn(r.store, grid, dateKey)
	if err != nil {
		return err
	}

	for i, asset := range assets {
		if i > 0 {
			r.pace(r.cfg.PaceDelay)
		}

		verdict := r.evaluateAsset(asset, yesterday, today, stats)

		// Fresh snapshot before every resolve: a prior iteration may have
		// appended a row, and a stale snapshot would duplicate it.
		grid, err := r.store.ReadGrid()
		if err != nil {
			log.Printf("read ledger for %s: %v", asset.Name, err)
			lastErr = err.Error()
			continue
		}
		row, err := ResolveAssetRow(r.store, grid, asset)
		if err != nil {
			log.Printf("resolve row for %s: %v", asset.Name, err)
			lastErr = err.Error()
			continue
		}

		if err := WriteCell(r.store, row, col, verdict); err != nil {
			log.Printf("write cell for %s: %v", asset.Name, err)
			lastErr = err.Error()
			stats.WriteErrors++
			writeErrorsTotal.Inc()
			continue
		}
		stats.AssetsOK++
		stats.BySeverity[verdict.Severity]++
		verdictsTotal.WithLabelValues(string(verdict.Severity)).Inc()
		r.debugf("updated %s (%s) row=%d col=%d: %s (%s)", asset.Name, asset.Type, row, col, verdict.Remark, verdict.Severity)
	}

	end := r.now()
	observeRun(start)
	if rec, ok := r.store.(interface{ RecordRun(LedgerRun) error }); ok {
		_ = rec.RecordRun(LedgerRun{
			RunID:       runID,
			StartedAt:   start.UTC(),
			EndedAt:     end.UTC(),
			DateKey:     dateKey,
			AssetsTotal: stats.AssetsTotal,
			AssetsOK:    stats.AssetsOK,
			FetchErrors: stats.FetchErrors,
			WriteErrors: stats.WriteErrors,
			LastError:   lastErr,
		})
	}

	body := fmt.Sprintf("run=%s job=%s date=%s assets=%d ok=%d fetch_errors=%d write_errors=%d white=%d yellow=%d orange=%d red=%d elapsed=%s",
		runID, r.cfg.JobLabel, dateKey, stats.AssetsTotal, stats.AssetsOK, stats.FetchErrors, stats.WriteErrors,
		stats.BySeverity[SeverityWhite], stats.BySeverity[SeverityYellow], stats.BySeverity[SeverityOrange], stats.BySeverity[SeverityRed],
		end.Sub(start))
	if err := r.notifier.Notify("Pump House Watchdog Report", body); err != nil {
		log.Printf("notify: %v", err)
	}

	r.debugf("run done: id=%s %s", runID, body)
	return nil
}

// evaluateAsset fetches one asset's telemetry under the per-asset timeout and
// runs the rule engine. Any fetch failure, timeout included, degrades to the
// fixed failure verdict; the rules never see partial data.
func (r *Runner) evaluateAsset(asset Asset, yesterday, today time.Time, stats *runStats) Verdict {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.AssetTimeout)
	defer cancel()

	readings, err := r.telemetry.FetchReadings(ctx, asset)
	if err != nil {
		log.Printf("fetch readings for %s: %v", asset.Name, err)
		stats.FetchErrors++
		fetchErrorsTotal.Inc()
		return FetchFailureVerdict()
	}

	activity, err := r.telemetry.FetchActivity(ctx, asset, yesterday, today)
	if err != nil {
		// Activity gates only the outage rule; evaluation proceeds without it.
		log.Printf("fetch activity for %s: %v", asset.Name, err)
		activity = nil
	}

	return Evaluate(readings, activity, r.now())
}
