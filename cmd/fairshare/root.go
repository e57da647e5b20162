package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/fairshare/internal/config"
	"github.com/mmynk/fairshare/pkg/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fairshare",
	Short: "Split a restaurant bill fairly",
	Long:  "Normalizes bills, allocates items and charges to participants, and extracts bills from receipt photos.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		// Logs go to stderr so stdout stays clean for output.
		logging.Configure(logging.Options{
			Level:  logging.ParseLevel(cfg.Log.Level),
			Format: cfg.Log.Format,
			Output: os.Stderr,
		})
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a config file (default ./config.yaml if present)")
	rootCmd.AddCommand(splitCmd, extractCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
