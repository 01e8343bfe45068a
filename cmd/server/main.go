package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/eqrev-analytics/internal/app"
	"github.com/godilite/eqrev-analytics/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile, envFile string

	root := &cobra.Command{
		Use:           "eqrev-server",
		Short:         "Serves the category performance dashboard over HTTP and gRPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfgFile, envFile)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func serve(ctx context.Context, cfgFile, envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		log.Printf("Failed to load %s: %v", envFile, err)
		return err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		return err
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return err
	}
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Application exited with error", zap.Error(err))
		return err
	}
	return nil
}
