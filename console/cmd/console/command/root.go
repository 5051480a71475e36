package command

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/config"
	"github.com/Krimson/vitals-console/console/internal/logger"
)

const serviceName = "vitals-console"

var cfg *config.Config

// flag values override the environment when set
var (
	apiBase   string
	page      string
	timezone  string
	layout    string
	hours     int
	timeout   time.Duration
	logLevel  string
	logFormat string
	redisAddr string
	schedule  string
)

var rootCmd = &cobra.Command{
	Use:               "console",
	Short:             "Patient monitoring console",
	Long:              "The console shows the vitals dashboard, the analysis card, the emergency wallet and civic steps",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiBase, "api-base", "", "Backend base address (CONSOLE_API_BASE)")
	flags.StringVar(&page, "page", "", "Page variant to mount (CONSOLE_PAGE)")
	flags.StringVar(&timezone, "timezone", "", "Timezone for chart labels (CONSOLE_TIMEZONE)")
	flags.StringVar(&layout, "layout", "", "YAML layout file (CONSOLE_LAYOUT_FILE)")
	flags.IntVar(&hours, "hours", 0, "Vitals window in hours (CONSOLE_VITALS_HOURS)")
	flags.DurationVar(&timeout, "timeout", 0, "Per-request timeout (CONSOLE_REQUEST_TIMEOUT)")
	flags.StringVarP(&logLevel, "log-level", "v", "", "Log level (LOG_LEVEL)")
	flags.StringVar(&logFormat, "log-format", "", "Log format json|console (LOG_FORMAT)")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis address for board fan-out (CONSOLE_REDIS_ADDR)")
	flags.StringVar(&schedule, "refresh", "", "Cron schedule for dashboard refreshes (CONSOLE_REFRESH_SCHEDULE)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-base") {
		loaded.APIBase = apiBase
	}
	if flags.Changed("page") {
		loaded.Page = page
	}
	if flags.Changed("timezone") {
		loaded.Timezone = timezone
	}
	if flags.Changed("layout") {
		loaded.LayoutFile = layout
	}
	if flags.Changed("hours") {
		loaded.VitalsHours = hours
	}
	if flags.Changed("timeout") {
		loaded.RequestTimeout = timeout
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormat
	}
	if flags.Changed("redis-addr") {
		loaded.RedisAddr = redisAddr
	}
	if flags.Changed("refresh") {
		loaded.RefreshSchedule = schedule
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func newLogger() (*zap.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
}

// newConsole builds a console logging to stderr
func newConsole(opts app.Options) (*app.Console, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	c, err := app.New(cfg, log, opts)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}
