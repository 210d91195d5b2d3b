package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board/internal/config"
	"github.com/BuzzLyutic/task-board/internal/handler"
	"github.com/BuzzLyutic/task-board/internal/repo"
	"github.com/BuzzLyutic/task-board/internal/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the store endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	cmd.Flags().StringVar(&cfg.StoreBackend, "backend", cfg.StoreBackend, "storage backend: file or postgres")
	cmd.Flags().StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "task document path for the file backend")
	cmd.Flags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres URL for the postgres backend")
	return cmd
}

func serve(cfg config.Config) error {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	taskRepo, closeRepo, err := openRepo(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	taskService := service.NewTaskService(taskRepo, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped successfully")
	return nil
}

func openRepo(cfg config.Config, logger *zap.Logger) (repo.TaskRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		logger.Info("Using file store", zap.String("path", cfg.TasksFile))
		return repo.NewFileRepo(cfg.TasksFile), func() {}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL) // Создаем новое соединение к БД
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(context.Background()); err != nil { // Пытаемся пингануть БД
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("Successfully connected to the Database!")
		return repo.NewPostgresRepo(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
