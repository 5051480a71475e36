package app

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/broadcast"
	"github.com/Krimson/vitals-console/console/internal/config"
	"github.com/Krimson/vitals-console/console/internal/controller"
	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/internal/stubapi"
)

func testConfig(t *testing.T) (*config.Config, *stubapi.Server) {
	t.Helper()
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	return &config.Config{
		APIBase:      srv.URL,
		VitalsHours:  48,
		Timezone:     "UTC",
		Page:         "all",
		RedisChannel: "vitals-console:board",
	}, stub
}

func newConsole(t *testing.T, cfg *config.Config, opts Options) *Console {
	t.Helper()
	if opts.Source == nil {
		opts.Source = rand.NewSource(7)
	}
	c, err := New(cfg, zap.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_AllPanels(t *testing.T) {
	cfg, _ := testConfig(t)
	c := newConsole(t, cfg, Options{})

	require.NotNil(t, c.Civic)
	require.NotNil(t, c.Wallet)
	require.NotNil(t, c.Analysis)
	require.Nil(t, c.Hub)
	require.Nil(t, c.Publisher)

	require.NoError(t, c.Start(context.Background()))

	snap := c.Board.Snapshot()
	require.Equal(t, "p001", snap.PatientID)
	require.Equal(t, controller.StateReady.String(), snap.State)
	require.Len(t, snap.Patients, 3)
	require.True(t, snap.Wallet.Visible)
	require.Contains(t, snap.Badges[render.SlotRiskBadge].Text, "Risk: ")
	require.Equal(t, 4, c.Controller.Charts().Live())
}

func TestNew_WalletPageOnly(t *testing.T) {
	cfg, stub := testConfig(t)
	cfg.Page = "wallet"
	c := newConsole(t, cfg, Options{})

	require.Nil(t, c.Civic)
	require.Nil(t, c.Analysis)
	require.NotNil(t, c.Wallet)

	require.NoError(t, c.Start(context.Background()))
	require.Zero(t, stub.Calls(stubapi.RoutePatients))
	require.Equal(t, 1, stub.Calls(stubapi.RouteEmergencyGet))
}

func TestStart_CollectsPanelErrors(t *testing.T) {
	cfg, stub := testConfig(t)
	cfg.FallbackPolicy = map[string]string{"emergency": "surface"}
	stub.Fail(stubapi.RoutePatients, http.StatusServiceUnavailable)
	stub.Fail(stubapi.RouteEmergencyGet, http.StatusServiceUnavailable)
	c := newConsole(t, cfg, Options{})

	err := c.Start(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "dashboard:")
	require.Contains(t, err.Error(), "wallet:")
	require.Equal(t, controller.StatusPatientsFailed, c.Board.Snapshot().Status)
}

func TestStart_WalletFallsBack(t *testing.T) {
	cfg, stub := testConfig(t)
	stub.Fail(stubapi.RouteEmergencyGet, http.StatusBadGateway)
	c := newConsole(t, cfg, Options{})

	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, fallback.Notice, c.Board.Snapshot().Wallet.Notice)
}

func TestStart_CivicShowsDemoTopic(t *testing.T) {
	cfg, stub := testConfig(t)
	c := newConsole(t, cfg, Options{})

	require.NoError(t, c.Start(context.Background()))

	steps := c.Board.Snapshot().Steps
	require.Equal(t, DemoStepsTopic, steps.Topic)
	require.Len(t, steps.Steps, 5)
	require.Empty(t, steps.Notice)
	require.Zero(t, stub.Calls(stubapi.RouteSteps))
}

func TestStart_BoundedByStartTimeout(t *testing.T) {
	cfg, stub := testConfig(t)
	cfg.StartTimeout = 50 * time.Millisecond
	release := stub.Hold(stubapi.RoutePatients, "")
	defer release()
	c := newConsole(t, cfg, Options{})

	done := make(chan error, 1)
	go func() {
		done <- c.Start(context.Background())
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		require.Contains(t, err.Error(), "dashboard:")
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after the start timeout")
	}
	require.Equal(t, controller.StatusPatientsFailed, c.Board.Snapshot().Status)
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg, _ := testConfig(t)

	bad := *cfg
	bad.Page = "kiosk"
	_, err := New(&bad, zap.NewNop(), Options{})
	require.ErrorIs(t, err, panels.ErrUnknownPage)

	bad = *cfg
	bad.FallbackPolicy = map[string]string{"vitals": "fallback"}
	_, err = New(&bad, zap.NewNop(), Options{})
	require.Error(t, err)

	bad = *cfg
	bad.RefreshSchedule = "sometimes"
	_, err = New(&bad, zap.NewNop(), Options{})
	require.Error(t, err)
}

func TestNew_LayoutFile(t *testing.T) {
	cfg, _ := testConfig(t)
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  kiosk: [civic, wallet]\n"), 0o644))
	cfg.LayoutFile = path
	cfg.Page = "kiosk"

	c := newConsole(t, cfg, Options{})
	require.Equal(t, "kiosk", c.Page.Name)
	require.NotNil(t, c.Civic)
	require.Nil(t, c.Analysis)
}

func TestRunBackground_PublishesToRedis(t *testing.T) {
	cfg, _ := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()

	listener := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { listener.Close() })

	var mu sync.Mutex
	var seen []render.Snapshot
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = broadcast.Listen(ctx, listener, cfg.RedisChannel, zap.NewNop(), func(s render.Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		})
	}()
	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels(cfg.RedisChannel)) == 1
	}, time.Second, 5*time.Millisecond)

	c := newConsole(t, cfg, Options{Push: true})
	require.NotNil(t, c.Hub)
	require.NotNil(t, c.Publisher)
	require.NoError(t, c.RunBackground(ctx))
	require.NoError(t, c.Start(ctx))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range seen {
			if s.State == controller.StateReady.String() {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunBackground_RedisUnreachable(t *testing.T) {
	cfg, _ := testConfig(t)
	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	mr.Close()

	c := newConsole(t, cfg, Options{})
	require.Error(t, c.RunBackground(context.Background()))
}
