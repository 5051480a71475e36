package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krimson/vitals-console/console/internal/app"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

var walletInput models.EmergencyProfile

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Emergency wallet",
	Long:  "The wallet command shows or saves the emergency profile",
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved emergency profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWallet(func(ctx context.Context, c *app.Console) error {
			_, err := c.Wallet.Load(ctx)
			return err
		})
	},
}

var walletSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the emergency profile; omitted fields keep their saved values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWallet(func(ctx context.Context, c *app.Console) error {
			if _, err := c.Wallet.Load(ctx); err != nil {
				return err
			}
			_, err := c.Wallet.Save(ctx, walletInput)
			return err
		})
	},
}

func withWallet(fn func(ctx context.Context, c *app.Console) error) error {
	c, log, err := newConsole(app.Options{})
	if err != nil {
		return err
	}
	defer log.Sync()
	defer c.Close()

	if c.Wallet == nil {
		return fmt.Errorf("page %q does not mount the wallet panel", c.Page.Name)
	}
	if err := fn(context.Background(), c); err != nil {
		return err
	}
	printWallet(c.Board.Snapshot().Wallet)
	return nil
}

func printWallet(w render.WalletCard) {
	fmt.Printf("Name:  %s\nID:    %s\nICE:   %s\nNotes: %s\nQR:    %s\n", w.Name, w.ID, w.ICE, w.Notes, w.QR)
	if w.Notice != "" {
		fmt.Println(w.Notice)
	}
}

func init() {
	flags := walletSaveCmd.Flags()
	flags.StringVar(&walletInput.Name, "name", "", "Full name")
	flags.StringVar(&walletInput.ID, "id", "", "National ID")
	flags.StringVar(&walletInput.ICE, "ice", "", "In case of emergency contact")
	flags.StringVar(&walletInput.MedicalNotes, "notes", "", "Medical notes")

	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletSaveCmd)
	rootCmd.AddCommand(walletCmd)
}
