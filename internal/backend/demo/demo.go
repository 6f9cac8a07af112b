// Package demo implements service.Repository as a seeded in-memory list
// for the unauthenticated demo mode. It never touches the network.
package demo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

// IDPrefix marks client-generated ids.
const IDPrefix = "demo-"

const day = 24 * time.Hour

// Repository serves DEMO mode.
type Repository struct {
	now func() time.Time

	mu    sync.Mutex
	tasks []service.Task
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository holding the seed tasks.
func New(opts ...Option) *Repository {
	r := &Repository{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.tasks = Seed(r.now())
	return r
}

// Seed returns the starter tasks with due dates relative to now.
func Seed(now time.Time) []service.Task {
	today := service.DateOf(now)
	return []service.Task{
		{
			ID:          "demo-1",
			Title:       "Try adding a new task",
			Description: "Run 'taskflow add' to create your first task in demo mode.",
			Status:      service.StatusTodo,
			Priority:    service.PriorityMedium,
			DueDate:     today.AddDays(1),
			CreatedAt:   now,
			Tags:        []string{"demo", "getting-started"},
		},
		{
			ID:          "demo-2",
			Title:       "Explore task management features",
			Description: "Try changing task status, priority, and other properties to see how the app works.",
			Status:      service.StatusInProgress,
			Priority:    service.PriorityHigh,
			DueDate:     today.AddDays(2),
			CreatedAt:   now,
			Tags:        []string{"demo", "features"},
		},
		{
			ID:          "demo-3",
			Title:       "Create an account to save your data",
			Description: "Sign up to keep your tasks and preferences saved across sessions.",
			Status:      service.StatusCompleted,
			Priority:    service.PriorityLow,
			DueDate:     today,
			CreatedAt:   now.Add(-day),
			Tags:        []string{"demo", "account"},
		},
		{
			ID:          "demo-4",
			Title:       "Prepare project presentation",
			Description: "Create slides and talking points for the quarterly review meeting.",
			Status:      service.StatusTodo,
			Priority:    service.PriorityHigh,
			DueDate:     today.AddDays(3),
			CreatedAt:   now,
			Tags:        []string{"work", "presentation"},
		},
		{
			ID:          "demo-5",
			Title:       "Research new productivity tools",
			Description: "Find and evaluate new tools that could improve team workflow and efficiency.",
			Status:      service.StatusInProgress,
			Priority:    service.PriorityMedium,
			DueDate:     today.AddDays(5),
			CreatedAt:   now.Add(-2 * day),
			Tags:        []string{"research", "productivity"},
		},
	}
}

// Mode implements service.Repository.
func (r *Repository) Mode() service.Mode {
	return service.ModeDemo
}

// List implements service.Repository.
func (r *Repository) List(ctx context.Context) ([]service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tasks), nil
}

// Get implements service.Repository.
func (r *Repository) Get(ctx context.Context, id string) (service.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		return r.tasks[i], nil
	}
	return service.Task{}, apperr.NewGeneric("task "+id+" not found", apperr.KindNotFound)
}

// Create implements service.Repository.
func (r *Repository) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	task := draft.Task(IDPrefix+uuid.NewString(), r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return task, nil
}

// Update implements service.Repository. Unknown ids are ignored.
func (r *Repository) Update(ctx context.Context, task service.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(task.ID); i >= 0 {
		r.tasks[i] = task
	}
	return nil
}

// Delete implements service.Repository. Unknown ids are ignored.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = slices.DeleteFunc(r.tasks, func(t service.Task) bool { return t.ID == id })
	return nil
}

// SetStatus implements service.Repository. Unknown ids are ignored.
func (r *Repository) SetStatus(ctx context.Context, id string, status service.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		r.tasks[i].Status = status
	}
	return nil
}

func (r *Repository) index(id string) int {
	return slices.IndexFunc(r.tasks, func(t service.Task) bool { return t.ID == id })
}
