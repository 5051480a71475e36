package stubapi

import "github.com/Krimson/vitals-console/console/internal/fallback"

// stepDB is the backend's own step table. It differs slightly from the
// fallback bank so callers can tell which one they got.
var stepDB = []fallback.Topic{
	{Key: "birth_certificate", Steps: []string{
		"Open eGov portal",
		"Fill applicant form",
		"Upload ID scan",
		"Pay fee",
		"Track status in dashboard",
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

// LookupSteps returns the backend steps for topic, nil when nothing matches
func LookupSteps(topic string) []string {
	t, ok := fallback.MatchTopic(topic, stepDB)
	if !ok {
		return nil
	}
	return append([]string(nil), t.Steps...)
}
