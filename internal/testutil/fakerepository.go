// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

// FakeRepository is an in-memory implementation of service.Repository for
// testing. Calls are counted so tests can assert that no remote call was
// made.
type FakeRepository struct {
	mu     sync.RWMutex
	mode   service.Mode
	tasks  []service.Task
	nextID int
	calls  int

	// Now stamps created tasks. Defaults to a fixed instant.
	Now func() time.Time

	// Error injection for testing
	ListErr      error
	GetErr       error
	CreateErr    error
	UpdateErr    error
	DeleteErr    error
	SetStatusErr error
}

// NewFakeRepository creates an empty repository serving mode.
func NewFakeRepository(mode service.Mode) *FakeRepository {
	return &FakeRepository{
		mode: mode,
		Now:  func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
}

// AddTask adds a task directly, bypassing error injection.
func (f *FakeRepository) AddTask(task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
}

// Calls returns how many Repository methods were invoked.
func (f *FakeRepository) Calls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls
}

// Snapshot returns a copy of the stored tasks.
func (f *FakeRepository) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Mode implements service.Repository.
func (f *FakeRepository) Mode() service.Mode {
	return f.mode
}

// List implements service.Repository.
func (f *FakeRepository) List(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.tasks), nil
}

// Get implements service.Repository.
func (f *FakeRepository) Get(ctx context.Context, id string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.GetErr != nil {
		return service.Task{}, f.GetErr
	}
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, apperr.NewAPI("Task not found", 404, "/tasks/"+id, "GET")
	}
	return f.tasks[i], nil
}

// Create implements service.Repository.
func (f *FakeRepository) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.nextID++
	task := draft.Task(fmt.Sprintf("task%d", f.nextID), f.Now())
	f.tasks = append(f.tasks, task)
	return task, nil
}

// Update implements service.Repository.
func (f *FakeRepository) Update(ctx context.Context, task service.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if i := f.indexLocked(task.ID); i >= 0 {
		f.tasks[i] = task
	}
	return nil
}

// Delete implements service.Repository.
func (f *FakeRepository) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if i := f.indexLocked(id); i >= 0 {
		f.tasks = slices.Delete(f.tasks, i, i+1)
	}
	return nil
}

// SetStatus implements service.Repository.
func (f *FakeRepository) SetStatus(ctx context.Context, id string, status service.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.SetStatusErr != nil {
		return f.SetStatusErr
	}
	if i := f.indexLocked(id); i >= 0 {
		f.tasks[i].Status = status
	}
	return nil
}

func (f *FakeRepository) indexLocked(id string) int {
	return slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
}
