package fallback

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

func TestSteps_BirthCertificate(t *testing.T) {
	p := NewProvider(rand.NewSource(1))

	require.Equal(t,
		[]string{"Open eGov portal", "Fill applicant form", "Upload ID scan", "Pay fee", "Track status"},
		p.Steps("birth certificate"))
}

func TestSteps_UnknownTopicYieldsOnePlaceholder(t *testing.T) {
	p := NewProvider(rand.NewSource(1))

	for _, topic := range []string{"xyz", "", "   ", "passport renewal"} {
		steps := p.Steps(topic)
		require.Len(t, steps, 1, "topic %q", topic)
		require.Equal(t, UnknownTopic, steps[0])
	}
}

func TestSteps_Matching(t *testing.T) {
	p := NewProvider(rand.NewSource(1))

	require.Equal(t, "Schedule appointment", p.Steps("Marriage Certificate")[0])
	require.Equal(t, "Submit online request", p.Steps("ID card")[0])
	// partial words match the first key containing all of them
	require.Equal(t, "Open eGov portal", p.Steps("birth")[0])
	require.Equal(t, "Schedule appointment", p.Steps("marriage cert")[0])
}

func TestSteps_ReturnsCopy(t *testing.T) {
	p := NewProvider(rand.NewSource(1))

	steps := p.Steps("birth certificate")
	steps[0] = "changed"
	require.Equal(t, "Open eGov portal", p.Steps("birth certificate")[0])
}

func TestAnalysis_PerPatientTable(t *testing.T) {
	p := NewProvider(rand.NewSource(7))

	cases := []struct {
		id      string
		level   models.Level
		risk    float64
		color   string
		reasons int
	}{
		{"p001", models.LevelStable, 12, "#3a873a", 3},
		{"p002", models.LevelWatch, 42, "#e6a700", 3},
		{"p003", models.LevelCritical, 78, "#d11a2d", 3},
		{"p999", models.LevelStable, 10, "#3a873a", 1},
	}
	for _, tc := range cases {
		got := p.Analysis(tc.id)
		require.Equal(t, tc.level, got.Level, tc.id)
		require.Equal(t, tc.risk, got.Risk, tc.id)
		require.Equal(t, tc.color, got.Color, tc.id)
		require.NotEmpty(t, got.Message, tc.id)
		require.Len(t, got.Reasons, tc.reasons, tc.id)
	}

	def := p.Analysis("")
	require.Equal(t, "Stable; routine monitoring.", def.Message)
	require.Equal(t, []string{"No specific risks detected."}, def.Reasons)
}

func TestAnalysis_DeterministicWithSeed(t *testing.T) {
	a := NewProvider(rand.NewSource(42))
	b := NewProvider(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		require.Equal(t, a.Analysis("p003").Message, b.Analysis("p003").Message)
	}
}

func TestAnalysis_MessagesComeFromBank(t *testing.T) {
	p := NewProvider(rand.NewSource(3))

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[p.Analysis("p002").Message] = true
	}
	for msg := range seen {
		require.Contains(t, analysisBank["p002"].messages, msg)
	}
	require.Len(t, seen, 3)
}

func TestWallet(t *testing.T) {
	w := NewProvider(rand.NewSource(1)).Wallet()

	require.Equal(t, "Demo User", w.Name)
	require.Equal(t, "AZ-ABC-123456", w.ID)
	require.Equal(t, "+1 480 555 1212", w.ICE)
	require.Equal(t, "No known allergies. Blood type O+.", w.MedicalNotes)
}
