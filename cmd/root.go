package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/mediconnect/mediconnect_backend/cmd/http"
	systemcmd "github.com/mediconnect/mediconnect_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "mediconnect",
	Short: "MediConnect clinic appointment backend.",
	Long: `MediConnect publishes professional schedules as bookable time blocks and
manages the appointment lifecycle of a medical clinic: booking, cancellation,
rescheduling, attendance and reporting.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
