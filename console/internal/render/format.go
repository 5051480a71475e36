package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Badge colors
const (
	ColorHigh     = "#d11"
	ColorModerate = "#e6a700"
	ColorLow      = "#3a873a"
)

// EmptyField stands in for blank wallet values
const EmptyField = "—"

// RiskLabel maps the alert count to a label and badge color
func RiskLabel(alerts []string) (label, color string) {
	switch {
	case len(alerts) >= 2:
		return "High", ColorHigh
	case len(alerts) == 1:
		return "Moderate", ColorModerate
	default:
		return "Low", ColorLow
	}
}

func RiskBadge(alerts []string) Badge {
	label, color := RiskLabel(alerts)
	return Badge{Text: "Risk: " + label, Color: color}
}

func StatusBadge(alerts []string) Badge {
	if len(alerts) == 0 {
		return Badge{Text: "Status: Stable", Color: ColorLow}
	}
	return Badge{Text: "Status: " + strings.Join(alerts, ", "), Color: ColorHigh}
}

// FormatNumber prints v in its shortest form
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDelta renders a delta in parentheses. Positive numbers get "+",
// zero gets "±", negatives keep their own minus. Text renders verbatim.
func FormatDelta(d models.Delta) (string, Tone) {
	if d.IsText() {
		return "(" + d.Text() + ")", ToneMuted
	}

	v := d.Number()
	switch {
	case v > 0:
		return "(+" + FormatNumber(v) + ")", ToneAction
	case v < 0:
		return "(" + FormatNumber(v) + ")", ToneAction2
	default:
		return "(±" + FormatNumber(0) + ")", ToneMuted
	}
}

// deltaText is the bare value of a delta, used for the BP composite
func deltaText(d models.Delta) string {
	if d.IsText() {
		return d.Text()
	}
	return FormatNumber(d.Number())
}

// BPDelta is the "<sys>/<dia>" composite shown next to blood pressure
func BPDelta(sys, dia models.Delta) models.Delta {
	return models.TextDelta(deltaText(sys) + "/" + deltaText(dia))
}

var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// TimeLabels formats each timestamp as HH:MM in loc. Timestamps without a
// zone are read as loc wall time. Unparseable entries become "--:--".
func TimeLabels(timestamps []string, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}

	labels := make([]string, len(timestamps))
	for i, raw := range timestamps {
		t, ok := parseTimestamp(raw, loc)
		if !ok {
			labels[i] = "--:--"
			continue
		}
		labels[i] = t.In(loc).Format("15:04")
	}
	return labels
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PatientLabel is the selector option text
func PatientLabel(p models.Patient) string {
	return p.Name + " — Bed " + p.Bed
}

// PatientSub is the sidebar second line
func PatientSub(p models.Patient) string {
	return "Bed " + p.Bed + " — " + p.MRN
}

// FilterPatients keeps patients whose sidebar text contains term, ignoring case
func FilterPatients(patients []models.Patient, term string) []models.Patient {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		text := strings.ToLower(p.Name + " " + PatientSub(p))
		if strings.Contains(text, term) {
			out = append(out, p)
		}
	}
	return out
}

// AnalysisHeadline renders "<LEVEL> • Risk <n> — <message>"
func AnalysisHeadline(a models.AnalysisResult) string {
	return strings.ToUpper(string(a.Level)) + " • Risk " + FormatNumber(a.Risk) + " — " + a.Message
}

func AnalysisReasons(a models.AnalysisResult) string {
	joined := strings.Join(a.Reasons, " • ")
	if joined == "" {
		return "No specific risks."
	}
	return joined
}

func orEmpty(s string) string {
	if s == "" {
		return EmptyField
	}
	return s
}
