package controller

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/apiclient"
	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/internal/stubapi"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// TestAnalysis records analysis loads
type TestAnalysis struct {
	mu    sync.Mutex
	loads []string
}

func (a *TestAnalysis) Load(ctx context.Context, patientID string, apply func(draw func()) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loads = append(a.loads, patientID)
}

func (a *TestAnalysis) Loads() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.loads...)
}

type fixture struct {
	stub     *stubapi.Server
	board    *render.Board
	ctrl     *Controller
	analysis *TestAnalysis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stub := stubapi.New()
	stub.Now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	board := render.NewBoard()
	analysis := &TestAnalysis{}
	ctrl := New(
		apiclient.NewClient(srv.URL, 0, zap.NewNop()),
		render.NewRenderer(board, nil, time.UTC),
		Options{Hours: 24, Analysis: analysis, Logger: zap.NewNop()},
	)
	t.Cleanup(ctrl.Close)

	return &fixture{stub: stub, board: board, ctrl: ctrl, analysis: analysis}
}

func TestStart_SelectsFirstPatient(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Start(context.Background()))

	require.Equal(t, StateReady, f.ctrl.State())
	require.Equal(t, "p001", f.ctrl.Selected())
	require.Len(t, f.ctrl.Patients(), 3)
	require.Equal(t, []string{"p001"}, f.analysis.Loads())

	snap := f.board.Snapshot()
	require.Equal(t, "p001", snap.PatientID)
	require.Equal(t, "ready", snap.State)
	require.Empty(t, snap.Status)
	require.Len(t, snap.KPIs, 5)
	require.Len(t, snap.Charts, 4)
	require.True(t, snap.Patients[0].Selected)
}

func TestStart_PatientsFailure(t *testing.T) {
	f := newFixture(t)
	f.stub.Fail(stubapi.RoutePatients, http.StatusInternalServerError)

	err := f.ctrl.Start(context.Background())
	require.Error(t, err)
	require.True(t, apiclient.IsRequestError(err))

	require.Equal(t, StatusPatientsFailed, f.board.Snapshot().Status)
	require.Equal(t, StateIdle, f.ctrl.State())
	require.Zero(t, f.stub.Calls(stubapi.RouteVitals))
}

func TestStart_NoPatients(t *testing.T) {
	f := newFixture(t)
	f.stub.SetPatients(nil)

	require.NoError(t, f.ctrl.Start(context.Background()))
	require.Equal(t, StateIdle, f.ctrl.State())
	require.Empty(t, f.ctrl.Selected())
}

func TestRefresh_WithoutSelection(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.ctrl.Refresh(context.Background()), ErrNoPatient)
	require.ErrorIs(t, f.ctrl.Select(context.Background(), ""), ErrNoPatient)
}

func TestRefresh_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Select(ctx, "p002"))

	require.NoError(t, f.ctrl.Refresh(ctx))
	first := f.board.Snapshot()
	require.NoError(t, f.ctrl.Refresh(ctx))
	second := f.board.Snapshot()

	require.Equal(t, first.KPIs, second.KPIs)
	require.Equal(t, first.Ranges, second.Ranges)
	require.Equal(t, first.Badges, second.Badges)
}

func TestRefresh_FourLiveChartsAfterManyRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Start(ctx))

	first, ok := f.ctrl.Charts().Get(render.SlotChartHR)
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.ctrl.Refresh(ctx))
		require.Equal(t, 4, f.ctrl.Charts().Live())
	}
	require.True(t, first.Destroyed())

	f.ctrl.Close()
	require.Equal(t, 0, f.ctrl.Charts().Live())
}

func TestRefresh_FailureKeepsPriorSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Start(ctx))
	before := f.board.Snapshot()

	f.stub.Fail(stubapi.RouteSummary, http.StatusServiceUnavailable)
	err := f.ctrl.Refresh(ctx)
	require.Error(t, err)

	var reqErr *apiclient.RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)

	after := f.board.Snapshot()
	require.Equal(t, StateFailed, f.ctrl.State())
	require.Equal(t, StatusLoadFailed, after.Status)
	require.Equal(t, before.KPIs, after.KPIs)
	require.Equal(t, before.Charts, after.Charts)
	require.Equal(t, 4, f.ctrl.Charts().Live())

	// a later successful refresh recovers
	f.stub.Heal(stubapi.RouteSummary)
	require.NoError(t, f.ctrl.Refresh(ctx))
	require.Equal(t, StateReady, f.ctrl.State())
	require.Empty(t, f.board.Snapshot().Status)
}

func TestRefresh_MisalignedSeriesFails(t *testing.T) {
	f := newFixture(t)
	f.stub.SetVitals("p001", models.VitalsSeries{
		Timestamps: []string{"2025-03-14T10:00", "2025-03-14T10:30"},
		HR:         []float64{70},
	})

	err := f.ctrl.Select(context.Background(), "p001")
	require.ErrorIs(t, err, models.ErrMisalignedSeries)
	require.Equal(t, StateFailed, f.ctrl.State())
}

func TestRefresh_StaleCompletionDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := f.stub.Hold(stubapi.RouteSummary, "p001")
	defer release()

	slow := make(chan error, 1)
	go func() {
		slow <- f.ctrl.Select(ctx, "p001")
	}()
	require.Eventually(t, func() bool {
		return f.stub.Calls(stubapi.RouteSummary) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, f.ctrl.Select(ctx, "p003"))
	require.Equal(t, "p003", f.board.Snapshot().PatientID)

	release()
	require.ErrorIs(t, <-slow, ErrSuperseded)

	snap := f.board.Snapshot()
	require.Equal(t, "p003", snap.PatientID)
	require.Equal(t, StateReady, f.ctrl.State())
	require.Equal(t, uint64(2), f.ctrl.Generation())
	require.Equal(t, 4, f.ctrl.Charts().Live())
	// the superseded selection does not load its analysis
	require.Equal(t, []string{"p003"}, f.analysis.Loads())
}

func TestSelect_StaleAnalysisDiscarded(t *testing.T) {
	stub := stubapi.New()
	stub.Now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	client := apiclient.NewClient(srv.URL, 0, zap.NewNop())
	board := render.NewBoard()
	renderer := render.NewRenderer(board, nil, time.UTC)
	analysis := panels.NewAnalysisPanel(client, fallback.NewProvider(rand.NewSource(1)), renderer, panels.DefaultPolicies(), zap.NewNop())
	ctrl := New(client, renderer, Options{Hours: 24, Analysis: analysis, Logger: zap.NewNop()})
	t.Cleanup(ctrl.Close)

	stub.SetAnalysis("p001", models.AnalysisResult{Level: models.LevelStable, Risk: 12, Message: "amina"})
	stub.SetAnalysis("p003", models.AnalysisResult{Level: models.LevelCritical, Risk: 81, Message: "chen"})
	ctx := context.Background()

	release := stub.Hold(stubapi.RouteAnalyze, "p001")
	defer release()

	slow := make(chan error, 1)
	go func() {
		slow <- ctrl.Select(ctx, "p001")
	}()
	require.Eventually(t, func() bool {
		return stub.Calls(stubapi.RouteAnalyze) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, ctrl.Select(ctx, "p003"))
	require.Equal(t, "CRITICAL • Risk 81 — chen", board.Snapshot().Analysis.Headline)

	release()
	// the dashboard refresh for p001 completed before p003 was selected
	require.NoError(t, <-slow)

	snap := board.Snapshot()
	require.Equal(t, "p003", snap.PatientID)
	require.Equal(t, "CRITICAL • Risk 81 — chen", snap.Analysis.Headline)
	require.NotContains(t, snap.Analysis.Headline, "amina")
}

func TestOnStateChange(t *testing.T) {
	f := newFixture(t)

	var states []State
	f.ctrl.OnStateChange(func(s State) {
		states = append(states, s)
	})

	require.NoError(t, f.ctrl.Select(context.Background(), "p001"))
	f.stub.Fail(stubapi.RouteVitals, http.StatusBadGateway)
	require.Error(t, f.ctrl.Refresh(context.Background()))

	require.Equal(t, []State{StateLoading, StateReady, StateLoading, StateFailed}, states)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "loading", StateLoading.String())
	require.Equal(t, "ready", StateReady.String())
	require.Equal(t, "failed", StateFailed.String())
	require.Equal(t, "unknown", State(42).String())
}
