package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/schema"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorCorrupt  = errors.New("corrupt document")
)

// FileRepo keeps the task list as a pretty-printed JSON array in one file.
// Save overwrites the file in place; a concurrent reader may see a partial write.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

func NewFileRepo(path string) *FileRepo { // Конструктор
	return &FileRepo{
		path: path,
	}
}

func (r *FileRepo) Load(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	data, err := os.ReadFile(r.path)
	r.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	tasks, err := schema.ValidateDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrorCorrupt, r.path, err)
	}
	return tasks, nil
}

func (r *FileRepo) Save(ctx context.Context, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeDocument(tasks)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

// encodeDocument renders the persisted layout: two-space indent, trailing newline.
func encodeDocument(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return append(data, '\n'), nil
}
