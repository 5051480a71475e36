package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDelta_UnmarshalNumberAndText(t *testing.T) {
	var deltas Deltas
	raw := `{"hr": 3, "spo2": -1, "bp_sys": "n/a", "bp_dia": 0, "rr": null, "temp": -0.2}`
	require.NoError(t, json.Unmarshal([]byte(raw), &deltas))

	require.False(t, deltas.HR.IsText())
	require.Equal(t, 3.0, deltas.HR.Number())
	require.Equal(t, -1.0, deltas.SpO2.Number())
	require.True(t, deltas.BPSys.IsText())
	require.Equal(t, "n/a", deltas.BPSys.Text())
	require.Equal(t, 0.0, deltas.BPDia.Number())
	require.False(t, deltas.RR.IsText())
	require.Equal(t, -0.2, deltas.Temp.Number())
}

func TestDelta_RejectsObjects(t *testing.T) {
	var d Delta
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &d))
}

func TestSummaryResponse_Decode(t *testing.T) {
	raw := `{
		"summary": {
			"latest": {"hr": 72, "spo2": 96, "bp_sys": 118, "bp_dia": 76, "rr": 16, "temp": 36.9},
			"deltas": {"hr": 2, "spo2": 0, "bp_sys": -3, "bp_dia": 1, "rr": 0, "temp": 0.1},
			"range24h": {"hr": {"min": 65, "max": 81}}
		},
		"alerts": ["Fever"],
		"last_updated": "2025-01-02T10:30"
	}`

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, 72.0, resp.Summary.Latest.HR)
	require.Equal(t, 36.9, resp.Summary.Latest.Temp)
	require.Equal(t, -3.0, resp.Summary.Deltas.BPSys.Number())
	require.Equal(t, Range{Min: 65, Max: 81}, resp.Summary.Range24h.HR)
	require.Equal(t, []string{"Fever"}, resp.Alerts)
}

func TestVitalsSeries_Validate(t *testing.T) {
	v := &VitalsSeries{
		Timestamps: []string{"2025-01-02T10:00", "2025-01-02T10:30"},
		HR:         []float64{70, 71},
		SpO2:       []float64{96, 97},
		BPSys:      []float64{118, 120},
		BPDia:      []float64{76, 78},
		RR:         []float64{16, 15},
		Temp:       []float64{36.8, 36.9},
	}
	require.NoError(t, v.Validate())
	require.Equal(t, 2, v.Len())

	v.Temp = v.Temp[:1]
	err := v.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMisalignedSeries))
}

func TestPatient_Bucket(t *testing.T) {
	cases := []struct {
		risk float64
		want RiskBucket
	}{
		{0, RiskBucketLow},
		{39.9, RiskBucketLow},
		{40, RiskBucketModerate},
		{69, RiskBucketModerate},
		{70, RiskBucketHigh},
		{100, RiskBucketHigh},
	}
	for _, tc := range cases {
		if got := (Patient{Risk: tc.risk}).Bucket(); got != tc.want {
			t.Errorf("risk %.1f: expected %s, got %s", tc.risk, tc.want, got)
		}
	}
}

func TestLevel_Color(t *testing.T) {
	require.Equal(t, "#3a873a", LevelStable.Color())
	require.Equal(t, "#e6a700", LevelWatch.Color())
	require.Equal(t, "#d11a2d", LevelCritical.Color())
}
