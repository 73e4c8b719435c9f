package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parttimehacker/diystatus"
	"github.com/parttimehacker/diystatus/internal/adapters/facts"
)

type runFlags struct {
	broker   string
	port     int
	host     string
	logLevel string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the agent using the provided config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			logger, err := diystatus.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			flow, err := diystatus.ConfFromConfig(cfg, diystatus.WithFlowOptions(diystatus.WithLogger(logger)))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting agent",
				zap.String("broker", cfg.Bus.BrokerURL()),
				zap.String("host", cfg.Topics.Host),
				zap.String("config", configPath))
			return flow.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&f.broker, "broker", "", "MQTT broker address (overrides bus.address)")
	cmd.Flags().IntVar(&f.port, "port", 0, "MQTT broker port (overrides bus.port)")
	cmd.Flags().StringVar(&f.host, "host", "", "Host segment of the published topics (overrides topics.host)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return cmd
}

func loadConfig(cmd *cobra.Command, f runFlags) (*diystatus.Config, error) {
	cfg, err := diystatus.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("broker") {
		cfg.Bus.Address = f.broker
	}
	if cmd.Flags().Changed("port") {
		cfg.Bus.Port = f.port
	}
	if cmd.Flags().Changed("host") {
		cfg.Topics.Host = f.host
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a config file without starting the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := diystatus.LoadConfig(configPath)
		if err != nil {
			return err
		}
		fmt.Printf("config %s looks good\n", configPath)
		fmt.Printf("  broker:   %s\n", cfg.Bus.BrokerURL())
		fmt.Printf("  topics:   %s/%s/{cpu,cpucelsius,disk}\n", cfg.Topics.Prefix, cfg.Topics.Host)
		fmt.Printf("  slots:    %v\n", cfg.Schedule.Slots)
		fmt.Printf("  interval: %s\n", cfg.Policy.SampleInterval)
		return nil
	},
}

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Print the host facts the agent publishes at startup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := diystatus.LoadConfig(configPath)
		if err != nil {
			return err
		}
		src := facts.NewFileFacts(cfg.Facts)
		ctx := cmd.Context()

		if v, err := src.OSVersion(ctx); err != nil {
			fmt.Printf("os: unavailable (%v)\n", err)
		} else {
			fmt.Printf("os: %s\n", v)
		}
		if v, err := src.HardwareModel(ctx); err != nil {
			fmt.Printf("pi: unavailable (%v)\n", err)
		} else {
			fmt.Printf("pi: %s\n", v)
		}
		return nil
	},
}
