package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/docker-hosts-sync/internal/app"
	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var rootCmd = &cobra.Command{
	Use:   "docker-hosts-sync",
	Short: "Synchronize a hosts file with running Docker containers",
	Long:  "A daemon that watches Docker container lifecycle events and keeps a managed section of a hosts file up to date with container hostnames.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		if err := config.InitConfig(cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		application, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		defer func() {
			if err := application.Close(); err != nil {
				logInstance.Error().Err(err).Msg("Error closing application")
			}
		}()

		// Create a context with cancellation for graceful shutdown.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Listen for OS signals.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logInstance.Info().Msgf("Received signal: %v", sig)
			cancel()
		}()

		// Run the application. When context is canceled, Run returns.
		if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	rootCmd.Flags().StringP("hosts-file", "f", "/etc/hosts", "path to the hosts file")
	rootCmd.Flags().StringP("tld", "t", ".docker", "top-level domain appended to container names")
	rootCmd.Flags().Int("debounce-ms", 300, "quiet period in milliseconds before a write is committed")
	rootCmd.Flags().BoolP("write", "w", false, "write to the hosts file (default is dry-run)")
	rootCmd.Flags().Bool("once", false, "run a single synchronization and exit")
	viper.BindPFlag("log.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("app.hosts_file", rootCmd.Flags().Lookup("hosts-file"))
	viper.BindPFlag("app.tld", rootCmd.Flags().Lookup("tld"))
	viper.BindPFlag("app.debounce_ms", rootCmd.Flags().Lookup("debounce-ms"))
	viper.BindPFlag("app.write", rootCmd.Flags().Lookup("write"))
	viper.BindPFlag("app.once", rootCmd.Flags().Lookup("once"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
