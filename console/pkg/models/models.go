package models

import (
	"errors"
	"fmt"
)

// RiskBucket is the three-way sidebar classification of a patient's risk score
type RiskBucket string

const (
	RiskBucketLow      RiskBucket = "low"
	RiskBucketModerate RiskBucket = "mod"
	RiskBucketHigh     RiskBucket = "high"
)

// Patient is a monitored subject as listed by /api/patients
type Patient struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Age    *int    `json:"age,omitempty"`
	Bed    string  `json:"bed"`
	MRN    string  `json:"mrn"`
	Status string  `json:"status,omitempty"`
	Risk   float64 `json:"risk"`
}

// Bucket maps the numeric risk score onto the sidebar bucket (thresholds 40/70)
func (p Patient) Bucket() RiskBucket {
	switch {
	case p.Risk >= 70:
		return RiskBucketHigh
	case p.Risk >= 40:
		return RiskBucketModerate
	default:
		return RiskBucketLow
	}
}

type PatientsResponse struct {
	Patients []Patient `json:"patients"`
}

// VitalsSeries holds index-aligned samples; every slice shares the length of Timestamps
type VitalsSeries struct {
	Timestamps  []string  `json:"timestamps"`
	HR          []float64 `json:"hr"`
	SpO2        []float64 `json:"spo2"`
	BPSys       []float64 `json:"bp_sys"`
	BPDia       []float64 `json:"bp_dia"`
	RR          []float64 `json:"rr"`
	Temp        []float64 `json:"temp"`
	LastUpdated string    `json:"last_updated,omitempty"`
}

func (v *VitalsSeries) Len() int {
	return len(v.Timestamps)
}

// Validate checks the alignment invariant. Time ordering is not checked.
func (v *VitalsSeries) Validate() error {
	n := len(v.Timestamps)
	columns := []struct {
		name   string
		values []float64
	}{
		{"hr", v.HR},
		{"spo2", v.SpO2},
		{"bp_sys", v.BPSys},
		{"bp_dia", v.BPDia},
		{"rr", v.RR},
		{"temp", v.Temp},
	}
	for _, column := range columns {
		if len(column.values) != n {
			return fmt.Errorf("%w: %s has %d samples, timestamps has %d",
				ErrMisalignedSeries, column.name, len(column.values), n)
		}
	}
	return nil
}

// Metrics is one value per vital sign
type Metrics struct {
	HR    float64 `json:"hr"`
	SpO2  float64 `json:"spo2"`
	BPSys float64 `json:"bp_sys"`
	BPDia float64 `json:"bp_dia"`
	RR    float64 `json:"rr"`
	Temp  float64 `json:"temp"`
}

type Deltas struct {
	HR    Delta `json:"hr"`
	SpO2  Delta `json:"spo2"`
	BPSys Delta `json:"bp_sys"`
	BPDia Delta `json:"bp_dia"`
	RR    Delta `json:"rr"`
	Temp  Delta `json:"temp"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Ranges struct {
	HR    Range `json:"hr"`
	SpO2  Range `json:"spo2"`
	BPSys Range `json:"bp_sys"`
	BPDia Range `json:"bp_dia"`
	RR    Range `json:"rr"`
	Temp  Range `json:"temp"`
}

type Summary struct {
	Latest   Metrics `json:"latest"`
	Deltas   Deltas  `json:"deltas"`
	Range24h Ranges  `json:"range24h"`
}

// SummaryResponse is the /api/patient/{id}/summary envelope
type SummaryResponse struct {
	Summary     Summary  `json:"summary"`
	Alerts      []string `json:"alerts"`
	LastUpdated string   `json:"last_updated,omitempty"`
}

// Level is the coarse analysis verdict
type Level string

const (
	LevelStable   Level = "Stable"
	LevelWatch    Level = "Watch"
	LevelCritical Level = "Critical"
)

// Color returns the card border color used for the level
func (l Level) Color() string {
	switch l {
	case LevelStable:
		return "#3a873a"
	case LevelWatch:
		return "#e6a700"
	default:
		return "#d11a2d"
	}
}

// AnalysisResult comes from /api/patient/{id}/analyze or from the fallback table
type AnalysisResult struct {
	Level   Level    `json:"level"`
	Risk    float64  `json:"risk"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons"`
	Mood    string   `json:"mood,omitempty"`
	Color   string   `json:"color,omitempty"`
}

// EmergencyProfile is the wallet record
type EmergencyProfile struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	ICE          string `json:"ice"`
	MedicalNotes string `json:"medical_notes"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

type SaveEmergencyResponse struct {
	OK      bool             `json:"ok"`
	Profile EmergencyProfile `json:"profile"`
}

type StepsResponse struct {
	Topic string   `json:"topic"`
	Steps []string `json:"steps"`
}

type QRResponse struct {
	DataURL string `json:"data_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PingResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

var (
	ErrMisalignedSeries = errors.New("vitals series misaligned")
)
