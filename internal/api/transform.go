package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/service"
)

// DueTimeOfDay is appended to calendar dates sent to the server.
const DueTimeOfDay = "T17:00:00"

// WireID is an identifier the server may send as a JSON number or string.
type WireID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *WireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = WireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = WireID(n.String())
	return nil
}

// WireTask is the JSON shape of a task exchanged with the server.
type WireTask struct {
	ID          WireID   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	Tags        []string `json:"tags"`
}

// Enum spellings at the transport boundary. The wire spelling is
// canonical; the legacy lowercase-hyphen spelling is accepted on read.
var (
	statusFromWire = map[string]service.Status{
		"TODO":        service.StatusTodo,
		"IN_PROGRESS": service.StatusInProgress,
		"COMPLETED":   service.StatusCompleted,
		"todo":        service.StatusTodo,
		"in-progress": service.StatusInProgress,
		"completed":   service.StatusCompleted,
	}
	priorityFromWire = map[string]service.Priority{
		"LOW":    service.PriorityLow,
		"MEDIUM": service.PriorityMedium,
		"HIGH":   service.PriorityHigh,
		"low":    service.PriorityLow,
		"medium": service.PriorityMedium,
		"high":   service.PriorityHigh,
	}
)

// ToClient converts a server task to the client representation. Due dates
// are truncated to the calendar date and missing tags become empty.
func ToClient(w WireTask) (service.Task, error) {
	status, ok := statusFromWire[w.Status]
	if !ok {
		return service.Task{}, invalidTask(w, "status", w.Status)
	}
	priority, ok := priorityFromWire[w.Priority]
	if !ok {
		return service.Task{}, invalidTask(w, "priority", w.Priority)
	}
	due, err := service.ParseDate(datePart(w.DueDate))
	if err != nil {
		return service.Task{}, invalidTask(w, "dueDate", w.DueDate)
	}

	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return service.Task{
		ID:          string(w.ID),
		Title:       w.Title,
		Description: w.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   parseInstant(w.CreatedAt),
		Tags:        tags,
	}, nil
}

// ToClientList converts a list of server tasks, failing on the first
// malformed one.
func ToClientList(ws []WireTask) ([]service.Task, error) {
	tasks := make([]service.Task, 0, len(ws))
	for _, w := range ws {
		t, err := ToClient(w)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// DraftToWire builds the create request body for d.
func DraftToWire(d service.Draft) WireTask {
	status := d.Status
	if status == "" {
		status = service.StatusTodo
	}
	priority := d.Priority
	if priority == "" {
		priority = service.PriorityMedium
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return WireTask{
		Title:       d.Title,
		Description: d.Description,
		Status:      string(status),
		Priority:    string(priority),
		DueDate:     dueInstant(d.DueDate),
		Tags:        tags,
	}
}

// TaskToWire builds the full update request body for t.
func TaskToWire(t service.Task) WireTask {
	w := DraftToWire(t.Draft())
	w.ID = WireID(t.ID)
	if !t.CreatedAt.IsZero() {
		w.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return w
}

func dueInstant(d service.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String() + DueTimeOfDay
}

func datePart(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseInstant(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", service.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func invalidTask(w WireTask, field, value string) error {
	return apperr.NewGeneric(fmt.Sprintf("server sent task %s with invalid %s %q", w.ID, field, value), apperr.KindUnknown)
}
