package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/web3-hub/internal/config"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// cli — состояние, общее для подкоманд: конфиг и логгер заполняются в PersistentPreRunE.
type cli struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "web3-hub",
		Short:         "Web3 dashboard backend: token-gated features, news feed, market data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env необязателен: в контейнере всё приходит через окружение.
			_ = godotenv.Load()

			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = setupLogger(cfg.Env, cmd.ErrOrStderr())
			slog.SetDefault(c.log)

			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")

	root.AddCommand(
		newServeCmd(c),
		newIngestCmd(c),
		newAccessCmd(c),
	)

	return root
}
