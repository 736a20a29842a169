// services/emission-optimizer/cmd/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string

	rootCmd = &cobra.Command{
		Use:   "emission-optimizer",
		Short: "Shipment cost and CO2e estimation with carrier recommendations",
		Long: `emission-optimizer tracks shipments, estimates their cost and CO2e emissions,
compares the assigned carrier against every alternative under an optional policy
and records approve or reject decisions.

Run "serve" for the HTTP API. The other commands work on the same data offline.`,
		SilenceUsage: true,
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("EMISSION_OPTIMIZER_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file, ignored when missing")
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(relayCmd)
}
