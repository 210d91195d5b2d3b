package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/worker"
)

// fakeStore запоминает каждую полную запись
type fakeStore struct {
	mu       sync.Mutex
	fetched  []model.Task
	saves    [][]model.Task
	saveErr  error
	fetchErr error
}

func (s *fakeStore) Fetch(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched, s.fetchErr
}

func (s *fakeStore) Save(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, tasks)
	return s.saveErr
}

func (s *fakeStore) last() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil
	}
	return s.saves[len(s.saves)-1]
}

// inlineSubmitter runs each job immediately on the caller's goroutine.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(job worker.Job) bool {
	job(context.Background())
	return true
}

// heldSubmitter keeps jobs until flush.
type heldSubmitter struct {
	jobs []worker.Job
}

func (h *heldSubmitter) Submit(job worker.Job) bool {
	h.jobs = append(h.jobs, job)
	return true
}

func (h *heldSubmitter) flush() {
	for _, job := range h.jobs {
		job(context.Background())
	}
	h.jobs = nil
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("t%d", n)
	})
}

func newTestBoard(store *fakeStore) *Board {
	return New(store, inlineSubmitter{}, sequentialIDs())
}

func TestBoard_Load(t *testing.T) {
	store := &fakeStore{fetched: []model.Task{
		{ID: "b", Title: "B", Status: model.StatusDoing},
		{ID: "a", Title: "A", Status: model.StatusTodo},
	}}
	b := newTestBoard(store)

	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, store.fetched, b.Tasks())
	assert.Empty(t, store.saves, "load must not write")

	store.fetchErr = errors.New("connection refused")
	assert.Error(t, b.Load(context.Background()))
	assert.Len(t, b.Tasks(), 2, "failed load keeps current list")
}

func TestBoard_AddPrependsTodo(t *testing.T) {
	store := &fakeStore{}
	b := newTestBoard(store)

	first, err := b.Add("first", "")
	require.NoError(t, err)
	second, err := b.Add("  second  ", "details")
	require.NoError(t, err)

	assert.Equal(t, model.Task{ID: "t1", Title: "first", Status: model.StatusTodo}, first)
	assert.Equal(t, model.Task{ID: "t2", Title: "second", Detail: "details", Status: model.StatusTodo}, second)
	assert.Equal(t, []model.Task{second, first}, b.Tasks())

	require.Len(t, store.saves, 2)
	assert.Equal(t, []model.Task{second, first}, store.last())

	_, err = b.Add("   ", "x")
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Len(t, store.saves, 2)
}

func TestBoard_DefaultIDsAreUnique(t *testing.T) {
	b := New(&fakeStore{}, inlineSubmitter{})

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		task, err := b.Add("task", "")
		require.NoError(t, err)
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestBoard_Edit(t *testing.T) {
	store := &fakeStore{}
	b := newTestBoard(store)
	task, _ := b.Add("draft", "")
	require.NoError(t, b.Advance(task.ID))

	require.NoError(t, b.Edit(task.ID, "final", "now with notes"))

	got, ok := b.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "now with notes", got.Detail)
	assert.Equal(t, model.StatusDoing, got.Status, "edit keeps status")

	assert.ErrorIs(t, b.Edit("missing", "x", ""), ErrNotFound)
	assert.ErrorIs(t, b.Edit(task.ID, "", ""), ErrEmptyTitle)
}

func TestBoard_AdvanceAndRetreat(t *testing.T) {
	store := &fakeStore{}
	b := newTestBoard(store)
	task, _ := b.Add("move me", "")

	assert.ErrorIs(t, b.Retreat(task.ID), ErrBoundary)

	require.NoError(t, b.Advance(task.ID))
	assert.Equal(t, []model.Task{}, b.Column(model.StatusTodo))
	assert.Len(t, b.Column(model.StatusDoing), 1)

	require.NoError(t, b.Advance(task.ID))
	assert.Len(t, b.Column(model.StatusDone), 1)
	assert.ErrorIs(t, b.Advance(task.ID), ErrBoundary)

	require.NoError(t, b.Retreat(task.ID))
	require.NoError(t, b.Retreat(task.ID))
	got, _ := b.Task(task.ID)
	assert.Equal(t, model.StatusTodo, got.Status)

	// add + 4 успешных перехода, отказы на границе не пишут
	assert.Len(t, store.saves, 5)
	assert.ErrorIs(t, b.Advance("missing"), ErrNotFound)
}

func TestBoard_DeleteClosesOpenView(t *testing.T) {
	store := &fakeStore{}
	b := newTestBoard(store)
	keep, _ := b.Add("keep", "")
	drop, _ := b.Add("drop", "")

	require.NoError(t, b.Open(drop.ID))
	opened, ok := b.Opened()
	require.True(t, ok)
	assert.Equal(t, drop.ID, opened.ID)

	require.NoError(t, b.Delete(drop.ID))
	_, ok = b.Opened()
	assert.False(t, ok, "detail view must close")
	assert.Equal(t, []model.Task{keep}, b.Tasks())
	assert.Equal(t, []model.Task{keep}, store.last())

	assert.ErrorIs(t, b.Delete(drop.ID), ErrNotFound)
}

func TestBoard_DeleteOtherKeepsOpenView(t *testing.T) {
	b := newTestBoard(&fakeStore{})
	keep, _ := b.Add("keep", "")
	drop, _ := b.Add("drop", "")

	require.NoError(t, b.Open(keep.ID))
	require.NoError(t, b.Delete(drop.ID))

	opened, ok := b.Opened()
	require.True(t, ok)
	assert.Equal(t, keep.ID, opened.ID)

	b.Close()
	_, ok = b.Opened()
	assert.False(t, ok)
	assert.ErrorIs(t, b.Open("missing"), ErrNotFound)
}

func TestBoard_OptimisticWithoutRollback(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("500 internal error")}
	held := &heldSubmitter{}
	b := New(store, held, sequentialIDs())

	var states []SaveState
	b.OnSaveStateChange(func(s SaveState) { states = append(states, s) })

	task, err := b.Add("optimistic", "")
	require.NoError(t, err)

	// Локально задача уже есть, хотя запись еще не ушла
	assert.Len(t, b.Tasks(), 1)
	assert.True(t, b.SaveState().Saving())

	held.flush()

	state := b.SaveState()
	assert.False(t, state.Saving())
	assert.Error(t, state.Err)
	got, ok := b.Task(task.ID)
	require.True(t, ok, "failed save must not roll back")
	assert.Equal(t, "optimistic", got.Title)

	require.Len(t, states, 1)
	assert.Error(t, states[0].Err)

	// Следующая удачная запись сбрасывает ошибку
	store.saveErr = nil
	require.NoError(t, b.Advance(task.ID))
	held.flush()
	assert.NoError(t, b.SaveState().Err)
}

func TestBoard_SnapshotsAreIndependent(t *testing.T) {
	store := &fakeStore{}
	held := &heldSubmitter{}
	b := New(store, held, sequentialIDs())

	task, _ := b.Add("one", "")
	require.NoError(t, b.Advance(task.ID))
	held.flush()

	require.Len(t, store.saves, 2)
	assert.Equal(t, model.StatusTodo, store.saves[0][0].Status)
	assert.Equal(t, model.StatusDoing, store.saves[1][0].Status)
}

type closedSubmitter struct{}

func (closedSubmitter) Submit(job worker.Job) bool { return false }

func TestBoard_SubmitRejected(t *testing.T) {
	b := New(&fakeStore{}, closedSubmitter{}, sequentialIDs())

	_, err := b.Add("late", "")
	require.NoError(t, err)

	state := b.SaveState()
	assert.False(t, state.Saving())
	assert.Error(t, state.Err)
}

func TestBoard_WithWorkerPool(t *testing.T) {
	store := &fakeStore{}
	pool := worker.NewPool(zap.NewNop(), 1)
	pool.Start(context.Background())
	b := New(store, pool, sequentialIDs())

	task, _ := b.Add("pooled", "")
	require.NoError(t, b.Advance(task.ID))
	require.NoError(t, b.Advance(task.ID))
	pool.Stop()

	require.Len(t, store.saves, 3)
	assert.Equal(t, model.StatusDone, store.last()[0].Status)
	assert.False(t, b.SaveState().Saving())
}

// A todo task only ever reaches done by passing through doing.
func TestBoard_NeverSkipsState(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := New(&fakeStore{}, inlineSubmitter{}, sequentialIDs())
		task, _ := b.Add("walker", "")

		visited := []model.Status{model.StatusTodo}
		moves := rapid.SliceOfN(rapid.Bool(), 1, 40).Draw(rt, "advance")
		for _, forward := range moves {
			if forward {
				_ = b.Advance(task.ID)
			} else {
				_ = b.Retreat(task.ID)
			}
			got, _ := b.Task(task.ID)
			prev := visited[len(visited)-1]
			if got.Status != prev {
				visited = append(visited, got.Status)
			}
		}

		for i := 1; i < len(visited); i++ {
			a, c := visited[i-1], visited[i]
			if (a == model.StatusTodo && c == model.StatusDone) || (a == model.StatusDone && c == model.StatusTodo) {
				rt.Fatalf("skipped doing: %v", visited)
			}
		}
	})
}
