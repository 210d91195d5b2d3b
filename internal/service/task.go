package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/repo"
	"github.com/BuzzLyutic/task-board/internal/schema"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// List returns the persisted list. Any read failure is logged and downgraded
// to an empty list; callers never see an error.
func (s *TaskService) List(ctx context.Context) []model.Task {
	tasks, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		return []model.Task{}
	case err != nil:
		// TODO: отдавать признак повреждения документа, сейчас он молча превращается в пустую доску
		s.logger.Warn("failed to load tasks, serving empty list", zap.Error(err))
		return []model.Task{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

// Replace validates the raw `{tasks}` payload and overwrites the stored
// document. Nothing is written when validation fails.
func (s *TaskService) Replace(ctx context.Context, raw []byte) ([]model.Task, error) {
	tasks, err := s.validate(raw) // Валидация до любой записи на диск
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, tasks); err != nil {
		return nil, fmt.Errorf("save tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) validate(raw []byte) ([]model.Task, error) {
	tasks, err := schema.ValidateRequest(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return tasks, nil
}
