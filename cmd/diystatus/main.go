package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"
	// Commit is set at build time.
	Commit = "none"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "diystatus",
	Short: "Host telemetry agent publishing CPU, temperature and disk averages over MQTT",
	Long: `diystatus samples CPU load, CPU temperature and free disk space every few
seconds and publishes the averages as retained MQTT messages at fixed minutes
of the hour. It also publishes the OS version and hardware model at startup
and listens on the system control topics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to the agent configuration file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "diystatus: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("diystatus\n")
		fmt.Printf("  Version: %s\n", Version)
		fmt.Printf("  Commit:  %s\n", Commit)
	},
}
