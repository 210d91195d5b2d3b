// Package board holds the client-side task board: the in-memory list, the
// open detail view and the todo -> doing -> done transitions.
//
// Every mutation replaces the local list first and then hands a snapshot
// of the whole list to a Submitter. A failed save is reported through the
// save state but never rolls the local list back; the local list stays the
// source of truth until the next Load.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/worker"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrBoundary   = errors.New("task cannot move further")
	ErrEmptyTitle = errors.New("title is required")
)

// Store is the remote side of the board.
type Store interface {
	Fetch(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}

// Submitter runs save jobs asynchronously. *worker.Pool satisfies it.
type Submitter interface {
	Submit(job worker.Job) bool
}

// SaveState backs the saving indicator.
type SaveState struct {
	Pending int
	Err     error
}

func (s SaveState) Saving() bool {
	return s.Pending > 0
}

type Board struct {
	store  Store
	submit Submitter
	newID  func() string

	mu      sync.Mutex
	tasks   []model.Task
	openID  string
	save    SaveState
	onSaved func(SaveState)
}

type Option func(*Board)

// WithIDGenerator replaces the UUID generator used by Add.
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) { b.newID = fn }
}

func New(store Store, submit Submitter, opts ...Option) *Board {
	b := &Board{
		store:  store,
		submit: submit,
		newID:  uuid.NewString,
		tasks:  []model.Task{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnSaveStateChange registers fn to be called after every save attempt
// finishes. fn runs on the submitter's goroutine.
func (b *Board) OnSaveStateChange(fn func(SaveState)) {
	b.mu.Lock()
	b.onSaved = fn
	b.mu.Unlock()
}

// Load fetches the list once. On failure the board keeps its current list.
func (b *Board) Load(ctx context.Context) error {
	tasks, err := b.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = clone(tasks)
	if _, ok := b.find(b.openID); !ok {
		b.openID = ""
	}
	return nil
}

// Tasks returns a copy of the whole list, newest first.
func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.tasks)
}

// Column returns the tasks in status s, keeping list order.
func (b *Board) Column(s model.Status) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Task{}
	for _, t := range b.tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	return out
}

func (b *Board) Task(id string) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.find(id)
	if !ok {
		return model.Task{}, false
	}
	return b.tasks[i], true
}

func (b *Board) SaveState() SaveState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.save
}

// Add prepends a new todo task.
func (b *Board) Add(title, detail string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	task := model.Task{
		ID:     b.newID(),
		Title:  title,
		Detail: detail,
		Status: model.StatusTodo,
	}
	err := b.mutate(func(tasks []model.Task) ([]model.Task, error) {
		next := make([]model.Task, 0, len(tasks)+1)
		next = append(next, task)
		return append(next, tasks...), nil
	})
	return task, err
}

// Edit changes title and detail in place; status is untouched.
func (b *Board) Edit(id, title, detail string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return b.update(id, func(t *model.Task) error {
		t.Title = title
		t.Detail = detail
		return nil
	})
}

// Advance moves a task one column to the right.
func (b *Board) Advance(id string) error {
	return b.update(id, func(t *model.Task) error {
		next, ok := t.Status.Next()
		if !ok {
			return fmt.Errorf("%w: %s is %s", ErrBoundary, t.ID, t.Status)
		}
		t.Status = next
		return nil
	})
}

// Retreat moves a task one column to the left.
func (b *Board) Retreat(id string) error {
	return b.update(id, func(t *model.Task) error {
		prev, ok := t.Status.Prev()
		if !ok {
			return fmt.Errorf("%w: %s is %s", ErrBoundary, t.ID, t.Status)
		}
		t.Status = prev
		return nil
	})
}

// Delete drops the task from the list and closes its detail view if open.
func (b *Board) Delete(id string) error {
	return b.mutate(func(tasks []model.Task) ([]model.Task, error) {
		i, ok := b.find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next := make([]model.Task, 0, len(tasks)-1)
		next = append(next, tasks[:i]...)
		next = append(next, tasks[i+1:]...)
		if b.openID == id {
			b.openID = ""
		}
		return next, nil
	})
}

// Open shows the detail view for id.
func (b *Board) Open(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.find(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b.openID = id
	return nil
}

func (b *Board) Close() {
	b.mu.Lock()
	b.openID = ""
	b.mu.Unlock()
}

// Opened returns the task shown in the detail view, if any.
func (b *Board) Opened() (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openID == "" {
		return model.Task{}, false
	}
	i, ok := b.find(b.openID)
	if !ok {
		return model.Task{}, false
	}
	return b.tasks[i], true
}

func (b *Board) update(id string, fn func(*model.Task) error) error {
	return b.mutate(func(tasks []model.Task) ([]model.Task, error) {
		i, ok := b.find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next := clone(tasks)
		if err := fn(&next[i]); err != nil {
			return nil, err
		}
		return next, nil
	})
}

// mutate applies fn under the lock, swaps the list in optimistically and
// submits the full snapshot outside the lock.
func (b *Board) mutate(fn func([]model.Task) ([]model.Task, error)) error {
	b.mu.Lock()
	next, err := fn(b.tasks)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.tasks = next
	b.save.Pending++
	snapshot := clone(next)
	b.mu.Unlock()

	ok := b.submit.Submit(func(ctx context.Context) error {
		err := b.store.Save(ctx, snapshot)
		b.finish(err)
		return err
	})
	if !ok {
		b.finish(errors.New("save queue closed"))
	}
	return nil
}

func (b *Board) finish(err error) {
	b.mu.Lock()
	b.save.Pending--
	b.save.Err = err
	state := b.save
	hook := b.onSaved
	b.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

// find must be called with b.mu held.
func (b *Board) find(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, t := range b.tasks {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
