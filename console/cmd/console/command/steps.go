package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Krimson/vitals-console/console/internal/app"
)

var stepsDemo bool

var stepsCmd = &cobra.Command{
	Use:   "steps <topic>",
	Short: "Look up civic process steps",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSteps,
}

func runSteps(cmd *cobra.Command, args []string) error {
	c, log, err := newConsole(app.Options{})
	if err != nil {
		return err
	}
	defer log.Sync()
	defer c.Close()

	if c.Civic == nil {
		return fmt.Errorf("page %q does not mount the civic panel", c.Page.Name)
	}

	topic := strings.Join(args, " ")
	var steps []string
	if stepsDemo {
		steps = c.Civic.Demo(topic)
	} else if steps, err = c.Civic.Lookup(context.Background(), topic); err != nil {
		return err
	}

	for i, step := range steps {
		fmt.Printf("%d. %s\n", i+1, step)
	}
	if notice := c.Board.Snapshot().Steps.Notice; notice != "" {
		fmt.Println(notice)
	}
	return nil
}

func init() {
	stepsCmd.Flags().BoolVar(&stepsDemo, "demo", false, "Show the built-in steps without calling the backend")
	rootCmd.AddCommand(stepsCmd)
}
