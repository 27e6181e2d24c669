package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pump-watchdog/watchdog"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var configPath string
	var dbPath string
	var jobLabel string
	var debug bool
	var legacyBaseURL string
	var currentBaseURL string
	var syslogAddr string
	var metricsAddr string
	var timezone string
	var paceDelay time.Duration
	var assetTimeout time.Duration
	var once bool
	var pollInterval time.Duration

	flag.StringVar(&configPath, "config", "", "YAML config file path.")
	flag.StringVar(&dbPath, "db", "watchdog.db", "SQLite ledger database path.")
	flag.StringVar(&jobLabel, "job", "", "Job label stamped into logs and notifications. Prefer config file.")
	flag.BoolVar(&debug, "debug", false, "Enable debug logs.")
	flag.StringVar(&legacyBaseURL, "legacy-base-url", "", "Base URL of the legacy station telemetry API.")
	flag.StringVar(&currentBaseURL, "current-base-url", "", "Base URL of the current telemetry API.")
	flag.StringVar(&syslogAddr, "syslog-addr", "", "Completion notification syslog receiver address (tcp). Empty disables.")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /metrics and /healthz. Empty disables.")
	flag.StringVar(&timezone, "timezone", "", "Timezone the ledger's calendar day is reckoned in (default Asia/Kolkata).")
	flag.DurationVar(&paceDelay, "pace-delay", 30*time.Second, "Delay between assets (downstream rate limit).")
	flag.DurationVar(&assetTimeout, "asset-timeout", 90*time.Second, "Per-asset telemetry fetch timeout.")
	flag.BoolVar(&once, "once", true, "Run once and exit (default true for crontab).")
	flag.DurationVar(&pollInterval, "poll-interval", 24*time.Hour, "Interval between runs when not running with --once=false.")
	flag.Parse()

	visited := map[string]bool{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	// Base config from file (optional)
	fileCfg := &watchdog.FileConfig{}
	if configPath != "" {
		cfg, err := watchdog.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		fileCfg = cfg
	}

	finalDB := fileCfg.Database.Path
	if finalDB == "" || visited["db"] {
		finalDB = dbPath
	}
	finalJob := fileCfg.Job
	if visited["job"] {
		finalJob = jobLabel
	}
	finalDebug := fileCfg.Debug
	if visited["debug"] {
		finalDebug = debug
	}
	finalLegacy := fileCfg.Telemetry.LegacyBaseURL
	if visited["legacy-base-url"] {
		finalLegacy = legacyBaseURL
	}
	finalCurrent := fileCfg.Telemetry.CurrentBaseURL
	if visited["current-base-url"] {
		finalCurrent = currentBaseURL
	}
	finalSyslog := fileCfg.SyslogAddr
	if visited["syslog-addr"] {
		finalSyslog = syslogAddr
	}
	finalMetrics := fileCfg.MetricsAddr
	if visited["metrics-addr"] {
		finalMetrics = metricsAddr
	}
	finalTimezone := fileCfg.Timezone
	if visited["timezone"] {
		finalTimezone = timezone
	}
	finalPace := paceDelay
	if !visited["pace-delay"] && fileCfg.PaceDelaySeconds > 0 {
		finalPace = time.Duration(fileCfg.PaceDelaySeconds) * time.Second
	}
	finalAssetTimeout := assetTimeout
	if !visited["asset-timeout"] && fileCfg.AssetTimeoutSeconds > 0 {
		finalAssetTimeout = time.Duration(fileCfg.AssetTimeoutSeconds) * time.Second
	}

	legacyAssets := make([]watchdog.Asset, 0, len(fileCfg.LegacyAssets))
	for _, a := range fileCfg.LegacyAssets {
		legacyAssets = append(legacyAssets, watchdog.Asset{
			ID:        a.StationID,
			Name:      a.Name,
			Type:      a.Type,
			Zone:      a.Zone,
			Scheme:    a.Scheme,
			Origin:    watchdog.OriginLegacy,
			StationID: a.StationID,
		})
	}

	if strings.TrimSpace(finalJob) == "" {
		fmt.Fprintln(os.Stderr, "missing job label (use --job or config.yaml job)")
		os.Exit(2)
	}
	if strings.TrimSpace(finalCurrent) == "" {
		fmt.Fprintln(os.Stderr, "missing current telemetry base URL (use --current-base-url or config.yaml telemetry.current_base_url)")
		os.Exit(2)
	}

	runner, err := watchdog.NewRunner(watchdog.RunnerConfig{
		DBPath:         finalDB,
		JobLabel:       finalJob,
		Debug:          finalDebug,
		LegacyBaseURL:  finalLegacy,
		CurrentBaseURL: finalCurrent,
		SyslogAddr:     finalSyslog,
		PaceDelay:      finalPace,
		AssetTimeout:   finalAssetTimeout,
		Timezone:       finalTimezone,
		LegacyAssets:   legacyAssets,
	})
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}
	defer runner.Close()

	if strings.TrimSpace(finalMetrics) != "" {
		srv := watchdog.NewMetricsServer(finalMetrics)
		go func() {
			log.Printf("serving /metrics on %s", finalMetrics)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if once {
		if err := runner.RunOnce(); err != nil {
			log.Fatalf("run once: %v", err)
		}
		return
	}

	for {
		if err := runner.RunOnce(); err != nil {
			log.Printf("run once error: %v", err)
		}
		time.Sleep(pollInterval)
	}
}
