package tasks

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

// Query narrows a task list. Zero fields match everything.
type Query struct {
	Search   string // case-insensitive substring of title or description
	Status   service.Status
	Priority service.Priority
}

// Filter returns the tasks matching q, in their original order.
func Filter(list []service.Task, q Query) []service.Task {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var result []service.Task
	for _, t := range list {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		result = append(result, t)
	}
	return result
}

// SortKey selects the ordering used by Sort.
type SortKey string

const (
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
)

// ParseSortKey accepts "dueDate", "due", "priority" or "status". An empty
// string selects SortDueDate.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "duedate", "due", "due-date":
		return SortDueDate, nil
	case "priority":
		return SortPriority, nil
	case "status":
		return SortStatus, nil
	}
	return "", apperr.NewValidation(fmt.Sprintf("invalid sort key %q", s), "sort", s)
}

// Sort returns a sorted copy of list. Due dates sort ascending with
// undated tasks last, priorities from HIGH to LOW, statuses lexically.
// Ties keep their original order.
func Sort(list []service.Task, by SortKey) []service.Task {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b service.Task) int {
		switch by {
		case SortPriority:
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		case SortStatus:
			return cmp.Compare(a.Status, b.Status)
		default:
			return compareDue(a.DueDate, b.DueDate)
		}
	})
	return sorted
}

func compareDue(a, b service.Date) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return a.Compare(b.Time)
}

// Stats summarizes a task list.
type Stats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// ComputeStats counts tasks by status. A task is overdue when its due date
// is before today and it is not completed.
func ComputeStats(list []service.Task, today service.Date) Stats {
	st := Stats{Total: len(list)}
	for _, t := range list {
		switch t.Status {
		case service.StatusTodo:
			st.Todo++
		case service.StatusInProgress:
			st.InProgress++
		case service.StatusCompleted:
			st.Completed++
		}
		if t.Status != service.StatusCompleted && !t.DueDate.IsZero() && t.DueDate.Before(today) {
			st.Overdue++
		}
	}
	return st
}
