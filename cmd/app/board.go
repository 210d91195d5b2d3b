package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board/internal/board"
	"github.com/BuzzLyutic/task-board/internal/config"
	"github.com/BuzzLyutic/task-board/internal/tui"
	"github.com/BuzzLyutic/task-board/internal/worker"
)

func boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the terminal board against a running store endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.BoardURL, "url", cfg.BoardURL, "store endpoint base URL")
	cmd.Flags().StringVar(&cfg.BoardLog, "log", cfg.BoardLog, "write logs to this file")
	cmd.Flags().IntVar(&cfg.SaveWorkers, "save-workers", cfg.SaveWorkers, "concurrent save requests")
	return cmd
}

func runBoard(ctx context.Context, cfg config.Config) error {
	logger, err := boardLogger(cfg.BoardLog)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(logger, cfg.SaveWorkers)
	pool.Start(ctx)
	defer pool.Stop() // Дожидаемся уже отправленных сохранений

	client := board.NewClient(cfg.BoardURL, &http.Client{Timeout: 10 * time.Second})
	b := board.New(client, pool)

	logger.Info("Board started", zap.String("url", cfg.BoardURL))
	return tui.Run(ctx, b)
}

// boardLogger не пишет в терминал: он занят интерфейсом
func boardLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
