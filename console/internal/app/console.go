// Package app wires the console components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/apiclient"
	"github.com/Krimson/vitals-console/console/internal/broadcast"
	"github.com/Krimson/vitals-console/console/internal/config"
	"github.com/Krimson/vitals-console/console/internal/controller"
	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/health"
	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/internal/scheduler"
	"github.com/Krimson/vitals-console/console/internal/websocket"
)

// DemoStepsTopic is the civic topic shown before the user asks for one
const DemoStepsTopic = "birth certificate"

type Options struct {
	// Source seeds the canned fallback text; nil uses the clock
	Source rand.Source
	// Push creates the WebSocket hub and subscribes it to the board
	Push bool
}

// Console holds every wired component. Panels the page does not mount stay nil.
type Console struct {
	Config     *config.Config
	Logger     *zap.Logger
	Client     *apiclient.Client
	Board      *render.Board
	Renderer   *render.Renderer
	Controller *controller.Controller
	Civic      *panels.CivicPanel
	Wallet     *panels.WalletPanel
	Analysis   *panels.AnalysisPanel
	Layout     panels.Layout
	Page       panels.Page
	Health     *health.HealthServer
	Hub        *websocket.Hub
	Publisher  *broadcast.RedisPublisher

	redis   *redis.Client
	refresh *scheduler.AutoRefresh

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Console, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policies, err := panels.ParsePolicies(cfg.FallbackPolicy)
	if err != nil {
		return nil, err
	}

	layout := panels.DefaultLayout()
	if cfg.LayoutFile != "" {
		if layout, err = panels.LoadLayout(cfg.LayoutFile); err != nil {
			return nil, err
		}
	}
	page, err := layout.Page(cfg.Page)
	if err != nil {
		return nil, err
	}

	if opts.Source == nil {
		opts.Source = rand.NewSource(time.Now().UnixNano())
	}

	c := &Console{
		Config: cfg,
		Logger: logger,
		Client: apiclient.NewClient(cfg.APIBase, cfg.RequestTimeout, logger),
		Board:  render.NewBoard(),
		Layout: layout,
		Page:   page,
		Health: health.NewHealthServer(),
	}
	c.Renderer = render.NewRenderer(c.Board, nil, loc)
	fb := fallback.NewProvider(opts.Source)

	ctrlOpts := controller.Options{Hours: cfg.VitalsHours, Logger: logger.Named("controller")}
	if page.Mounts(panels.PanelAnalysis) {
		c.Analysis = panels.NewAnalysisPanel(c.Client, fb, c.Renderer, policies, logger.Named("analysis"))
		ctrlOpts.Analysis = c.Analysis
	}
	if page.Mounts(panels.PanelWallet) {
		c.Wallet = panels.NewWalletPanel(c.Client, fb, c.Renderer, policies, logger.Named("wallet"))
	}
	if page.Mounts(panels.PanelCivic) {
		c.Civic = panels.NewCivicPanel(c.Client, fb, c.Renderer, policies, logger.Named("civic"))
	}
	c.Controller = controller.New(c.Client, c.Renderer, ctrlOpts)
	c.Health.TrackController(c.Controller)

	if opts.Push {
		c.Hub = websocket.NewHub(logger.Named("websocket"))
		c.Board.Subscribe(c.Hub.BroadcastBoard)
	}

	if cfg.RedisEnabled() {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.Publisher = broadcast.NewRedisPublisher(c.redis, cfg.RedisChannel, logger.Named("broadcast"))
		c.Board.Subscribe(c.Publisher.Enqueue)
	}

	if cfg.RefreshSchedule != "" && page.Mounts(panels.PanelDashboard) {
		c.refresh, err = scheduler.NewAutoRefresh(cfg.RefreshSchedule, c.Controller, cfg.RequestTimeout, logger.Named("scheduler"))
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Console configured",
		zap.String("api_base", cfg.APIBase),
		zap.String("page", page.Name),
		zap.Bool("push", opts.Push),
		zap.Bool("redis", cfg.RedisEnabled()),
		zap.String("refresh_schedule", cfg.RefreshSchedule),
	)
	return c, nil
}

// Start runs the initial load of every mounted panel, bounded by the
// configured start timeout. The civic panel opens on the birth certificate
// demo. A failing panel does not stop the others; all errors are returned.
func (c *Console) Start(ctx context.Context) error {
	if c.Config.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Config.StartTimeout)
		defer cancel()
	}

	if c.Civic != nil {
		c.Civic.Demo(DemoStepsTopic)
	}

	var errs []error
	if c.Page.Mounts(panels.PanelDashboard) {
		if err := c.Controller.Start(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dashboard: %w", err))
		}
	}
	if c.Wallet != nil {
		if _, err := c.Wallet.Load(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wallet: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RunBackground starts the hub, the Redis publisher and the refresh schedule
// that were configured. Close stops them.
func (c *Console) RunBackground(ctx context.Context) error {
	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", c.Config.RedisAddr, err)
		}
		c.Logger.Info("Connected to Redis", zap.String("address", c.Config.RedisAddr))
	}

	ctx, c.cancel = context.WithCancel(ctx)
	if c.Hub != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.Hub.Run(ctx)
		}()
	}
	if c.Publisher != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.Publisher.Run(ctx)
		}()
	}
	if c.refresh != nil {
		c.refresh.Start()
	}
	return nil
}

// Close stops background work and destroys the chart handles
func (c *Console) Close() {
	if c.refresh != nil {
		c.refresh.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	c.Controller.Close()
}
