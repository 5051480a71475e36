// Package fallback supplies the static demo values shown when the backend
// cannot be reached.
package fallback

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Notice is shown next to any panel rendered from fallback data
const Notice = "Backend not reachable — showing demo data."

// UnknownTopic is the single placeholder step for topics with no entry
const UnknownTopic = "No demo steps for this topic. Try “birth certificate”, “marriage certificate” or “ID card”."

type analysisRow struct {
	level    models.Level
	risk     float64
	messages []string
	reasons  []string
}

var analysisBank = map[string]analysisRow{
	"p001": {
		level: models.LevelStable,
		risk:  12,
		messages: []string{
			"Stable; continue routine monitoring.",
			"Stable today; mild fatigue reported.",
			"Stable and responding well to care.",
		},
		reasons: []string{"Vitals within expected range", "No acute issues flagged", "Symptoms controlled"},
	},
	"p002": {
		level: models.LevelWatch,
		risk:  42,
		messages: []string{
			"Warning; reassess within 15 minutes.",
			"Borderline stable; keep a close eye.",
			"Slightly elevated risk; repeat checks.",
		},
		reasons: []string{"Mild BP elevation", "Occasional SpO₂ dips", "HR trending up"},
	},
	"p003": {
		level: models.LevelCritical,
		risk:  78,
		messages: []string{
			"Critical risk; nurse check within 5 minutes.",
			"High concern; interventions ongoing.",
			"Unstable; continuous monitoring required.",
		},
		reasons: []string{"Low SpO₂", "Tachycardia episodes", "Temperature elevated"},
	},
}

var defaultAnalysis = analysisRow{
	level:    models.LevelStable,
	risk:     10,
	messages: []string{"Stable; routine monitoring."},
	reasons:  []string{"No specific risks detected."},
}

// StepBank maps normalized topic keys to demo steps. Order matters for matching.
var StepBank = []Topic{
	{Key: "birth_certificate", Steps: []string{
		"Open eGov portal",
		"Fill applicant form",
		"Upload ID scan",
		"Pay fee",
		"Track status",
	}},
	{Key: "marriage_certificate", Steps: []string{
		"Schedule appointment",
		"Bring IDs & witnesses",
		"Sign registry",
		"Receive digital copy",
	}},
	{Key: "id_card", Steps: []string{
		"Submit online request",
		"Photo & fingerprint at office",
		"Pay fee",
		"Pickup or receive by mail",
	}},
}

// Topic is one civic process with its ordered steps
type Topic struct {
	Key   string
	Steps []string
}

// Provider hands out fallback values. Message choice among canned phrasings
// is drawn from the injected source.
type Provider struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewProvider(src rand.Source) *Provider {
	return &Provider{rnd: rand.New(src)}
}

// Analysis returns the canned assessment for a patient. Unknown ids get the
// default stable row.
func (p *Provider) Analysis(patientID string) models.AnalysisResult {
	row, ok := analysisBank[patientID]
	if !ok {
		row = defaultAnalysis
	}

	p.mu.Lock()
	idx := p.rnd.Intn(len(row.messages))
	p.mu.Unlock()

	return models.AnalysisResult{
		Level:   row.level,
		Risk:    row.risk,
		Message: row.messages[idx],
		Reasons: append([]string(nil), row.reasons...),
		Color:   row.level.Color(),
	}
}

// Wallet returns the demo emergency profile
func (p *Provider) Wallet() models.EmergencyProfile {
	return models.EmergencyProfile{
		Name:         "Demo User",
		ID:           "AZ-ABC-123456",
		ICE:          "+1 480 555 1212",
		MedicalNotes: "No known allergies. Blood type O+.",
	}
}

// Steps returns the demo steps for topic, or exactly one placeholder line
func (p *Provider) Steps(topic string) []string {
	if t, ok := MatchTopic(topic, StepBank); ok {
		return append([]string(nil), t.Steps...)
	}
	return []string{UnknownTopic}
}

// MatchTopic normalizes topic (lowercase, spaces to underscores) and looks it
// up by exact key first, then by the first key containing every word.
// A blank topic matches nothing.
func MatchTopic(topic string, bank []Topic) (Topic, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(topic)), " ", "_")
	if key == "" {
		return Topic{}, false
	}

	for _, t := range bank {
		if t.Key == key {
			return t, true
		}
	}

	var words []string
	for _, w := range strings.Split(key, "_") {
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Topic{}, false
	}

	for _, t := range bank {
		matched := true
		for _, w := range words {
			if !strings.Contains(t.Key, w) {
				matched = false
				break
			}
		}
		if matched {
			return t, true
		}
	}
	return Topic{}, false
}
