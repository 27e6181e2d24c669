package watchdog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelemetryProvider supplies readings and recent activity for one asset.
// Either call may fail; the orchestrator substitutes a failure verdict rather
// than evaluating rules over partial data.
type TelemetryProvider interface {
	FetchReadings(ctx context.Context, asset Asset) (ReadingSet, error)
	FetchActivity(ctx context.Context, asset Asset, start, end time.Time) ([]ActivityEvent, error)
}

// RosterSource lists the current-origin assets known to the live system.
type RosterSource interface {
	FetchAssets(ctx context.Context) ([]Asset, error)
}

// HTTPTelemetry talks to the two telemetry backends: the legacy station API
// (POST, stationId addressing) and the current one (GET, id addressing).
type HTTPTelemetry struct {
	LegacyBaseURL  string
	CurrentBaseURL string
	client         *http.Client
}

func NewHTTPTelemetry(legacyBaseURL string, currentBaseURL string, timeout time.Duration) *HTTPTelemetry {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &HTTPTelemetry{
		LegacyBaseURL:  strings.TrimRight(legacyBaseURL, "/"),
		CurrentBaseURL: strings.TrimRight(currentBaseURL, "/"),
		client:         &http.Client{Timeout: timeout, Transport: tr},
	}
}

// dataEnvelope is the common {"data": ...} response wrapper of both backends.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type kpiItem struct {
	Label string `json:"label"`
	Key   string `json:"key"`
	Badge string `json:"badge"`
	Value any    `json:"value"`
}

type activityItem struct {
	Timestamp                   string `json:"timestamp"`
	IsOn                        *bool  `json:"is_on"`
	MainPumpStatus              *bool  `json:"main_pump_status"`
	TransitionTimestamp         string `json:"transition_timestamp"`
	MainPumpTransitionTimestamp string `json:"main_pump_transition_timestamp"`
}

type rosterItem struct {
	ID            json.Number `json:"id"`
	PumpHouseName string      `json:"pump_house_name"`
	TypeName      string      `json:"pump_house_type_name"`
	ZoneName      string      `json:"zone_name"`
	SchemeName    string      `json:"scheme_name"`
}

func (t *HTTPTelemetry) FetchReadings(ctx context.Context, asset Asset) (ReadingSet, error) {
	var u string
	var method string
	if asset.Origin == OriginLegacy {
		method = http.MethodPost
		u = fmt.Sprintf("%s/api/kpi?stationId=%s", t.LegacyBaseURL, url.QueryEscape(asset.StationID))
	} else {
		method = http.MethodGet
		u = fmt.Sprintf("%s/api/gen/get_kpi?id=%s", t.CurrentBaseURL, url.QueryEscape(asset.ID))
	}
	var items []kpiItem
	if err := t.getJSON(ctx, method, u, &items); err != nil {
		return nil, err
	}
	out := make(ReadingSet, 0, len(items))
	for _, it := range items {
		label := it.Label
		if label == "" {
			label = it.Key
		}
		r := Reading{Label: label, Value: valueString(it.Value)}
		if strings.HasPrefix(it.Badge, "Last Recorded") {
			r.Annotation = it.Badge
		} else {
			r.Qualifier = it.Badge
		}
		out = append(out, r)
	}
	return out, nil
}

func (t *HTTPTelemetry) FetchActivity(ctx context.Context, asset Asset, start, end time.Time) ([]ActivityEvent, error) {
	const dayLayout = "2006-01-02"
	var u string
	var method string
	if asset.Origin == OriginLegacy {
		method = http.MethodPost
		u = fmt.Sprintf("%s/api/pump-activity?stationId=%s&start_date=%s&end_date=%s",
			t.LegacyBaseURL, url.QueryEscape(asset.StationID), start.Format(dayLayout), end.Format(dayLayout))
	} else {
		method = http.MethodGet
		u = fmt.Sprintf("%s/api/gen/pump-activity?id=%s&start_date=%s&end_date=%s",
			t.CurrentBaseURL, url.QueryEscape(asset.ID), start.Format(dayLayout), end.Format(dayLayout))
	}
	var items []activityItem
	if err := t.getJSON(ctx, method, u, &items); err != nil {
		return nil, err
	}
	out := make([]ActivityEvent, 0, len(items))
	for _, it := range items {
		ev := ActivityEvent{IsOn: true}
		if it.MainPumpStatus != nil {
			ev.IsOn = *it.MainPumpStatus
		} else if it.IsOn != nil {
			ev.IsOn = *it.IsOn
		}
		if ts, ok := parseAPITime(it.Timestamp); ok {
			ev.Timestamp = ts
		}
		transition := it.MainPumpTransitionTimestamp
		if transition == "" {
			transition = it.TransitionTimestamp
		}
		if ts, ok := parseAPITime(transition); ok {
			ev.TransitionAt = ts
		}
		out = append(out, ev)
	}
	return out, nil
}

func (t *HTTPTelemetry) FetchAssets(ctx context.Context) ([]Asset, error) {
	u := t.CurrentBaseURL + "/api/pump_house/get_pumphouses"
	var items []rosterItem
	if err := t.getJSON(ctx, http.MethodGet, u, &items); err != nil {
		return nil, err
	}
	out := make([]Asset, 0, len(items))
	for _, it := range items {
		zone := it.ZoneName
		if zone == "" {
			zone = "N/A"
		}
		out = append(out, Asset{
			ID:     it.ID.String(),
			Name:   it.PumpHouseName,
			Type:   mapPumpHouseType(it.TypeName),
			Zone:   zone,
			Scheme: it.SchemeName,
			Origin: OriginCurrent,
		})
	}
	return out, nil
}

func (t *HTTPTelemetry) getJSON(ctx context.Context, method string, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, u, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, u, err)
	}
	return nil
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func parseAPITime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
