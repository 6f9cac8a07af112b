package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListTasks fetches every task of the signed-in user.
func (c *Client) ListTasks(ctx context.Context) ([]WireTask, error) {
	var tasks []WireTask
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id string) (WireTask, error) {
	var task WireTask
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task)
	return task, err
}

// CreateTask creates a task and returns the server's representation.
func (c *Client) CreateTask(ctx context.Context, task WireTask) (WireTask, error) {
	var created WireTask
	err := c.do(ctx, http.MethodPost, "/tasks", task, &created)
	return created, err
}

// UpdateTask replaces a task.
func (c *Client) UpdateTask(ctx context.Context, id string, task WireTask) error {
	return c.do(ctx, http.MethodPut, taskPath(id), task, nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// UpdateTaskStatus changes only the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, taskPath(id)+"/status", map[string]string{"status": status}, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}
