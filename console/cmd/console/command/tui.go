package command

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/logger"
	"github.com/Krimson/vitals-console/console/internal/tui"
)

var logFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal console",
	Long:  "The tui command runs the interactive console; it is also the default command",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	log, err := logger.NewFile(cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer log.Sync()

	c, err := app.New(cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RunBackground(context.Background()); err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(c), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "vitals-console.log", "Log file for the terminal UI")
	rootCmd.AddCommand(tuiCmd)
}
