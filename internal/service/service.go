package service

import "context"

// Repository is a backing store for tasks. The Store never talks to a
// transport directly; it goes through whichever Repository matches the
// current mode.
type Repository interface {
	// Mode reports which mode this repository serves.
	Mode() Mode

	// List returns every task in server order.
	List(ctx context.Context) ([]Task, error)

	// Get returns a single task.
	Get(ctx context.Context, id string) (Task, error)

	// Create stores a new task and returns it with its assigned id and
	// creation time.
	Create(ctx context.Context, draft Draft) (Task, error)

	// Update replaces the stored representation of task.
	Update(ctx context.Context, task Task) error

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// SetStatus changes only the status of a task.
	SetStatus(ctx context.Context, id string, status Status) error
}
