package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/render"
)

var (
	snapshotPatient string
	snapshotCharts  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Load the mounted panels once and print the board",
	Long:  "The snapshot command runs the initial load and prints the board as JSON, or the charts as text with --charts",
	RunE:  runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	c, log, err := newConsole(app.Options{})
	if err != nil {
		return err
	}
	defer log.Sync()
	defer c.Close()

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		log.Warn("Initial load incomplete", zap.Error(err))
	}
	if snapshotPatient != "" {
		if err := c.Controller.Select(ctx, snapshotPatient); err != nil {
			log.Warn("Patient load failed", zap.String("patient_id", snapshotPatient), zap.Error(err))
		}
	}

	snap := c.Board.Snapshot()
	if snapshotCharts {
		for _, slot := range render.ChartSlots {
			if chart, ok := snap.Charts[slot]; ok {
				fmt.Println(chart.Plot)
				fmt.Println()
			}
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotPatient, "patient", "p", "", "Select this patient after the initial load")
	snapshotCmd.Flags().BoolVar(&snapshotCharts, "charts", false, "Print the charts instead of JSON")
	rootCmd.AddCommand(snapshotCmd)
}
