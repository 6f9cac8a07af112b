// Package service defines the task domain types and the repository
// interface shared by the remote and demo backends.
package service

import (
	"fmt"
	"strings"
	"time"

	"taskflow/internal/apperr"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists every status in cycle order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Next returns the following status in the TODO -> IN_PROGRESS ->
// COMPLETED -> TODO cycle. Unknown statuses restart the cycle.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusTodo
	}
}

// ParseStatus accepts the canonical spelling as well as the legacy
// lowercase-hyphen form ("in-progress").
func ParseStatus(s string) (Status, error) {
	switch normalizeEnum(s) {
	case "TODO":
		return StatusTodo, nil
	case "IN_PROGRESS":
		return StatusInProgress, nil
	case "COMPLETED", "DONE":
		return StatusCompleted, nil
	}
	return "", apperr.NewValidation(fmt.Sprintf("invalid status %q", s), "status", s)
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities; higher is more important.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority accepts any letter case.
func ParsePriority(s string) (Priority, error) {
	switch normalizeEnum(s) {
	case "LOW":
		return PriorityLow, nil
	case "MEDIUM":
		return PriorityMedium, nil
	case "HIGH":
		return PriorityHigh, nil
	}
	return "", apperr.NewValidation(fmt.Sprintf("invalid priority %q", s), "priority", s)
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}

// Mode selects which backing store is authoritative.
type Mode string

const (
	ModeDemo          Mode = "DEMO"
	ModeAuthenticated Mode = "AUTHENTICATED"
)

// Task is a single task as the client sees it.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	DueDate     Date      `json:"dueDate" yaml:"dueDate"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	Tags        []string  `json:"tags" yaml:"tags"`
}

// Draft holds the user-supplied fields of a task that does not exist yet.
type Draft struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     Date
	Tags        []string
}

// Draft returns the editable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        append([]string(nil), t.Tags...),
	}
}

// Task builds a task from d with the given identity. Missing status and
// priority default to TODO and MEDIUM, and tags are never nil.
func (d Draft) Task(id string, createdAt time.Time) Task {
	status := d.Status
	if status == "" {
		status = StatusTodo
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	tags := append([]string{}, d.Tags...)
	return Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     d.DueDate,
		CreatedAt:   createdAt,
		Tags:        tags,
	}
}
