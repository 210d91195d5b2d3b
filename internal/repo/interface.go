package repo

import (
	"context"

	"github.com/BuzzLyutic/task-board/internal/model"
)

// TaskRepository хранит весь список задач одним документом
type TaskRepository interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}
