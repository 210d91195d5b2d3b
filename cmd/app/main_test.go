package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board/internal/config"
	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/repo"
)

func TestOpenRepo_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	r, closeRepo, err := openRepo(config.Config{StoreBackend: config.BackendFile, TasksFile: path}, zap.NewNop())
	require.NoError(t, err)
	defer closeRepo()

	require.IsType(t, &repo.FileRepo{}, r)
	require.NoError(t, r.Save(context.Background(), []model.Task{}))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenRepo_UnknownBackend(t *testing.T) {
	_, _, err := openRepo(config.Config{StoreBackend: "redis"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestBoardLogger(t *testing.T) {
	logger, err := boardLogger("")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	path := filepath.Join(t.TempDir(), "board.log")
	logger, err = boardLogger(path)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestRootCommands(t *testing.T) {
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "board")
}
