package watchdog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Metric labels as they appear in the KPI feeds. The pressure label keeps the
// upstream misspelling; correcting it here would break lookups.
const (
	labelTotalOnTime        = "Total On Time"
	labelTotalFlow          = "Total Flow of Pump(m³)"
	labelChlorinePumpStatus = "Chlorine Pump Status"
	labelChlorineOHR        = "Residual Chlorine(ppm) at OHR"
	labelChlorineSource     = "Residual Chlorine(ppm) at Source Side"
	labelWaterLevelOHR      = "Water Level of OHR(m)"
	labelWaterPressureOHR   = "Water Presure in OHR (PSI)"
	labelTubewellLevel      = "Tubewell Water Level(m)"
	labelDischargeFlow      = "Discharge From Service OHR - Total Flow(m³)"
	labelDischargeVelocity  = "Discharge From Service OHR - Velocity(m/s)"
	labelDischargeRate      = "Discharge From Service OHR(m³/h)"
)

const (
	QualifierToday     = "Today"
	QualifierYesterday = "Yesterday"
)

const zeroDurationPrefix = "00 h 00 m 00 s"

const defaultRemark = "All OK."

// FetchFailureVerdict is recorded when telemetry for an asset cannot be
// obtained; the rule engine is never invoked with partial data.
func FetchFailureVerdict() Verdict {
	return Verdict{Remark: "API Error", Severity: SeverityRed}
}

// Get returns the value of the first reading matching label, and qualifier if
// given (empty qualifier matches any). The second result is false when no
// reading matches; guards treat that as "rule not applicable".
func (rs ReadingSet) Get(label string, qualifier string) (string, bool) {
	for _, r := range rs {
		if r.Label != label {
			continue
		}
		if qualifier != "" && r.Qualifier != qualifier {
			continue
		}
		return r.Value, true
	}
	return "", false
}

var lastRecordedRe = regexp.MustCompile(`\(([\d\- :]+)\)`)

const lastRecordedLayout = "02-01-2006 15:04:05"

// LastRecordedTime extracts the parenthesized timestamp from a matching
// reading's "Last Recorded (DD-MM-YYYY HH:mm:ss)" annotation. Returns false
// when the annotation is absent or malformed, never an error.
func (rs ReadingSet) LastRecordedTime(label string) (time.Time, bool) {
	for _, r := range rs {
		if r.Label != label || !strings.HasPrefix(r.Annotation, "Last Recorded") {
			continue
		}
		m := lastRecordedRe.FindStringSubmatch(r.Annotation)
		if m == nil {
			return time.Time{}, false
		}
		t, err := time.Parse(lastRecordedLayout, m[1])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

var numberPrefixRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?`)

// parseNumber reads a leading decimal number from a textual reading value.
// Trailing units are ignored; a value with no numeric prefix does not parse.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := numberPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type ruleContext struct {
	readings ReadingSet
	activity []ActivityEvent
	now      time.Time
}

// rule is one guard/verdict pair of the decision list.
type rule struct {
	name  string
	match func(c ruleContext) (Verdict, bool)
}

// decisionList is evaluated in order with first-match-wins. The order is
// load-bearing: the zero-on-time-but-nonzero-flow guards are strictly more
// specific than the plain zero-on-time guard and must be consulted first.
// Do not reorder or sort by severity.
var decisionList = []rule{
	{name: "pump off more than 24h", match: pumpOffExtended},
	{name: "chlorine pump off", match: chlorinePumpOff},
	{name: "on-time zero with flow (yesterday)", match: onTimeFlowMismatchYesterday},
	{name: "on-time zero (yesterday)", match: onTimeZeroYesterday},
	{name: "on-time zero with flow (today)", match: onTimeFlowMismatchToday},
	{name: "residual chlorine stale zero", match: chlorineStaleZero},
	{name: "OHR water level range", match: waterLevelRange},
	{name: "OHR water pressure range", match: waterPressureRange},
	{name: "tubewell level range", match: tubewellLevelRange},
	{name: "discharge consistency (today)", match: dischargeMismatchToday},
	{name: "discharge zero (yesterday)", match: dischargeZeroYesterday},
}

// Evaluate runs the ordered decision list over one asset's readings and
// activity. It is pure and total: when no guard fires it returns the default
// all-clear verdict.
func Evaluate(readings ReadingSet, activity []ActivityEvent, now time.Time) Verdict {
	c := ruleContext{readings: readings, activity: activity, now: now}
	for _, r := range decisionList {
		if v, ok := r.match(c); ok {
			return v
		}
	}
	return Verdict{Remark: defaultRemark, Severity: SeverityWhite}
}

func pumpOffExtended(c ruleContext) (Verdict, bool) {
	if len(c.activity) == 0 {
		return Verdict{}, false
	}
	latest := c.activity[0]
	if latest.IsOn {
		return Verdict{}, false
	}
	if latest.TransitionAt.IsZero() || c.now.Sub(latest.TransitionAt) < 24*time.Hour {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Pump Status OFF for more than 24 hours.",
		Severity: SeverityOrange,
	}, true
}

func chlorinePumpOff(c ruleContext) (Verdict, bool) {
	// The KPI feed carries no off-duration for the chlorine pump, so this
	// guard cannot fire yet. It keeps its slot in the evaluation order.
	_, _ = c.readings.Get(labelChlorinePumpStatus, "")
	return Verdict{}, false
}

func onTimeZero(c ruleContext, qualifier string) bool {
	v, ok := c.readings.Get(labelTotalOnTime, qualifier)
	return ok && strings.HasPrefix(v, zeroDurationPrefix)
}

func onTimeFlowMismatchYesterday(c ruleContext) (Verdict, bool) {
	if !onTimeZero(c, QualifierYesterday) {
		return Verdict{}, false
	}
	flow, ok := c.readings.Get(labelTotalFlow, QualifierYesterday)
	if !ok {
		return Verdict{}, false
	}
	if n, ok := parseNumber(flow); !ok || n <= 0 {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Total On Time (Yesterday) is zero but Total Flow Yesterday is non-zero. Pump Controller Detector Issue.",
		Severity: SeverityRed,
	}, true
}

func onTimeZeroYesterday(c ruleContext) (Verdict, bool) {
	if !onTimeZero(c, QualifierYesterday) {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Total On Time (Yesterday) is zero.",
		Severity: SeverityOrange,
	}, true
}

func onTimeFlowMismatchToday(c ruleContext) (Verdict, bool) {
	if !onTimeZero(c, QualifierToday) {
		return Verdict{}, false
	}
	flow, ok := c.readings.Get(labelTotalFlow, QualifierToday)
	if !ok {
		return Verdict{}, false
	}
	if n, ok := parseNumber(flow); !ok || n <= 0 {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Total On Time (Today) is zero but Total Flow Today is non-zero. Pump Controller Detector Issue.",
		Severity: SeverityRed,
	}, true
}

func chlorineStaleZero(c ruleContext) (Verdict, bool) {
	label := labelChlorineOHR
	v, ok := c.readings.Get(label, "")
	if !ok {
		label = labelChlorineSource
		v, ok = c.readings.Get(label, "")
	}
	if !ok {
		return Verdict{}, false
	}
	if n, ok := parseNumber(v); !ok || n != 0 {
		return Verdict{}, false
	}
	last, ok := c.readings.LastRecordedTime(labelChlorineOHR)
	if !ok {
		last, ok = c.readings.LastRecordedTime(labelChlorineSource)
	}
	if !ok || c.now.Sub(last) <= 6*time.Hour {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Residual Chlorine is zero for more than 6 hours.",
		Severity: SeverityOrange,
	}, true
}

func outOfRange(c ruleContext, label string, lo float64, hi float64) bool {
	v, ok := c.readings.Get(label, "")
	if !ok {
		return false
	}
	n, ok := parseNumber(v)
	if !ok {
		return false
	}
	return n < lo || n > hi
}

func waterLevelRange(c ruleContext) (Verdict, bool) {
	if !outOfRange(c, labelWaterLevelOHR, 0.1, 6) {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Water Level of OHR shows out of range (<0.1m or >6m). READING ERROR.",
		Severity: SeverityOrange,
	}, true
}

func waterPressureRange(c ruleContext) (Verdict, bool) {
	if !outOfRange(c, labelWaterPressureOHR, 20, 36) {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Water Pressure in OHR shows out of range (<20psi or >36psi). READING ERROR.",
		Severity: SeverityOrange,
	}, true
}

func tubewellLevelRange(c ruleContext) (Verdict, bool) {
	if !outOfRange(c, labelTubewellLevel, 1, 32) {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Tubewell Water Level out of range (should be 1-32m). SENSOR ERROR.",
		Severity: SeverityOrange,
	}, true
}

func dischargeMismatchToday(c ruleContext) (Verdict, bool) {
	labels := []string{labelDischargeFlow, labelDischargeVelocity, labelDischargeRate}
	anyPositive := false
	anyZero := false
	for _, label := range labels {
		v, ok := c.readings.Get(label, QualifierToday)
		if !ok {
			continue
		}
		n, ok := parseNumber(v)
		if !ok {
			continue
		}
		if n > 0 {
			anyPositive = true
		}
		if n == 0 {
			anyZero = true
		}
	}
	if !anyPositive || !anyZero {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Discharge From Service OHR - Total Flow, Velocity, or Discharge mismatch. SENSOR ERROR.",
		Severity: SeverityRed,
	}, true
}

func dischargeZeroYesterday(c ruleContext) (Verdict, bool) {
	v, ok := c.readings.Get(labelDischargeFlow, QualifierYesterday)
	if !ok {
		return Verdict{}, false
	}
	if n, ok := parseNumber(v); !ok || n != 0 {
		return Verdict{}, false
	}
	return Verdict{
		Remark:   "Discharge From Service OHR - Total Flow (Yesterday) is zero. Inspection error.",
		Severity: SeverityYellow,
	}, true
}
