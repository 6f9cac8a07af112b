package tasks_test

import (
	"testing"

	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

func fixture() []service.Task {
	return []service.Task{
		{ID: "1", Title: "Write report", Description: "Quarterly numbers", Status: service.StatusTodo, Priority: service.PriorityLow, DueDate: service.NewDate(2026, 3, 12)},
		{ID: "2", Title: "Call Alice", Description: "About the REPORT", Status: service.StatusCompleted, Priority: service.PriorityHigh, DueDate: service.NewDate(2026, 3, 1)},
		{ID: "3", Title: "Plan trip", Status: service.StatusInProgress, Priority: service.PriorityMedium, DueDate: service.NewDate(2026, 3, 5)},
		{ID: "4", Title: "Someday", Status: service.StatusTodo, Priority: service.PriorityHigh},
	}
}

func ids(list []service.Task) string {
	s := ""
	for _, t := range list {
		s += t.ID
	}
	return s
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		q    tasks.Query
		want string
	}{
		{"empty query", tasks.Query{}, "1234"},
		{"search title and description", tasks.Query{Search: "report"}, "12"},
		{"search trims", tasks.Query{Search: "  trip "}, "3"},
		{"status", tasks.Query{Status: service.StatusTodo}, "14"},
		{"priority", tasks.Query{Priority: service.PriorityHigh}, "24"},
		{"combined", tasks.Query{Search: "report", Priority: service.PriorityHigh}, "2"},
		{"no match", tasks.Query{Search: "zzz"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tasks.Filter(fixture(), tt.q)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		by   tasks.SortKey
		want string
	}{
		{tasks.SortDueDate, "2314"},
		{tasks.SortPriority, "2431"},
		{tasks.SortStatus, "2314"},
	}
	for _, tt := range tests {
		list := fixture()
		if got := ids(tasks.Sort(list, tt.by)); got != tt.want {
			t.Errorf("sort by %s: expected %q, got %q", tt.by, tt.want, got)
		}
		if ids(list) != "1234" {
			t.Errorf("sort by %s modified its input", tt.by)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]tasks.SortKey{
		"":         tasks.SortDueDate,
		"dueDate":  tasks.SortDueDate,
		"due":      tasks.SortDueDate,
		"PRIORITY": tasks.SortPriority,
		"status":   tasks.SortStatus,
	} {
		got, err := tasks.ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := tasks.ParseSortKey("title"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestComputeStats(t *testing.T) {
	st := tasks.ComputeStats(fixture(), service.NewDate(2026, 3, 10))

	want := tasks.Stats{Total: 4, Todo: 2, InProgress: 1, Completed: 1, Overdue: 1}
	if st != want {
		t.Errorf("expected %+v, got %+v", want, st)
	}
}
