package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krimson/vitals-console/console/internal/apiclient"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		resp, err := apiclient.NewClient(cfg.APIBase, cfg.RequestTimeout, log).Ping(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%s ok=%t version=%s time=%s\n", cfg.APIBase, resp.OK, resp.Version, resp.Time)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
