// Package rest implements service.Repository over the TaskFlow REST API.
package rest

import (
	"context"

	"taskflow/internal/api"
	"taskflow/internal/service"
)

// Repository serves AUTHENTICATED mode.
type Repository struct {
	client *api.Client
}

// New creates a repository using client.
func New(client *api.Client) *Repository {
	return &Repository{client: client}
}

// Mode implements service.Repository.
func (r *Repository) Mode() service.Mode {
	return service.ModeAuthenticated
}

// List implements service.Repository.
func (r *Repository) List(ctx context.Context) ([]service.Task, error) {
	wire, err := r.client.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return api.ToClientList(wire)
}

// Get implements service.Repository.
func (r *Repository) Get(ctx context.Context, id string) (service.Task, error) {
	wire, err := r.client.GetTask(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	return api.ToClient(wire)
}

// Create implements service.Repository.
func (r *Repository) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	wire, err := r.client.CreateTask(ctx, api.DraftToWire(draft))
	if err != nil {
		return service.Task{}, err
	}
	return api.ToClient(wire)
}

// Update implements service.Repository.
func (r *Repository) Update(ctx context.Context, task service.Task) error {
	return r.client.UpdateTask(ctx, task.ID, api.TaskToWire(task))
}

// Delete implements service.Repository.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.client.DeleteTask(ctx, id)
}

// SetStatus implements service.Repository.
func (r *Repository) SetStatus(ctx context.Context, id string, status service.Status) error {
	return r.client.UpdateTaskStatus(ctx, id, string(status))
}
