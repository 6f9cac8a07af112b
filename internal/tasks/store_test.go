package tasks_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"pgregory.net/rapid"

	"taskflow/internal/api"
	"taskflow/internal/apperr"
	"taskflow/internal/backend/demo"
	"taskflow/internal/backend/rest"
	"taskflow/internal/classify"
	"taskflow/internal/notify"
	"taskflow/internal/service"
	"taskflow/internal/session"
	"taskflow/internal/tasks"
	"taskflow/internal/testutil"
)

type recorder struct {
	shown []notify.Notification
}

func (r *recorder) Show(n notify.Notification) { r.shown = append(r.shown, n) }

func keys(key string, _ map[string]string) string { return key }

func newNotifier() (*notify.Dispatcher, *recorder) {
	rec := &recorder{}
	return notify.New(rec, keys, classify.NewLogger(logr.Discard(), "")), rec
}

func demoRepo() *demo.Repository {
	return demo.New(demo.WithClock(func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }))
}

func sampleTask(id string, status service.Status) service.Task {
	return service.Task{ID: id, Title: "Task " + id, Status: status, Priority: service.PriorityMedium, Tags: []string{}}
}

func TestFetch_MapsWireTasks(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddTask(api.WireTask{ID: "t1", Title: "Write report", Status: "TODO", Priority: "HIGH", DueDate: "2026-04-01T17:00:00Z"})
	fake.AddTask(api.WireTask{ID: "t2", Title: "Review PR", Status: "IN_PROGRESS", Priority: "LOW", DueDate: "2026-04-02T17:00:00Z"})
	n, _ := newNotifier()
	store := tasks.New(rest.New(api.New(fake.URL())), n)

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	list := store.Tasks()
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	if list[0].ID != "t1" || list[0].Title != "Write report" || list[0].Status != service.StatusTodo {
		t.Errorf("unexpected first task %+v", list[0])
	}
	if list[1].ID != "t2" || list[1].Title != "Review PR" || list[1].Status != service.StatusInProgress {
		t.Errorf("unexpected second task %+v", list[1])
	}
	if list[0].DueDate.String() != "2026-04-01" {
		t.Errorf("expected calendar date, got %s", list[0].DueDate)
	}
	if store.IsLoading() {
		t.Error("loading flag left set")
	}
}

func TestFetch_FailureKeepsListAndOffersRetry(t *testing.T) {
	repo := testutil.NewFakeRepository(service.ModeAuthenticated)
	repo.AddTask(sampleTask("t1", service.StatusTodo))
	n, rec := newNotifier()
	store := tasks.New(repo, n)
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	repo.ListErr = apperr.NewNetwork("connection refused", false)
	repo.AddTask(sampleTask("t2", service.StatusTodo))
	err := store.Fetch(context.Background())

	if apperr.From(err).Kind != apperr.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if len(store.Tasks()) != 1 {
		t.Errorf("expected list unchanged, got %d tasks", len(store.Tasks()))
	}
	if store.Err() != "connection refused" {
		t.Errorf("expected error message, got %q", store.Err())
	}
	if store.IsLoading() {
		t.Error("loading flag left set after failure")
	}

	last := rec.shown[len(rec.shown)-1]
	if last.Variant != notify.VariantDestructive || !last.Retryable {
		t.Fatalf("expected retryable error notification, got %+v", last)
	}

	repo.ListErr = nil
	if err := n.Retry(context.Background(), last.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if len(store.Tasks()) != 2 {
		t.Errorf("expected retry to refresh the list, got %d tasks", len(store.Tasks()))
	}
	if store.Err() != "" {
		t.Errorf("expected error cleared by new operation, got %q", store.Err())
	}
}

func TestFetch_DemoIsNoop(t *testing.T) {
	n, _ := newNotifier()
	store := tasks.New(demoRepo(), n)

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.Tasks()) != 5 {
		t.Errorf("expected seeded list, got %d tasks", len(store.Tasks()))
	}
}

func TestAdd_ValidationFailureLeavesListUnchanged(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Fail("POST /tasks", http.StatusUnprocessableEntity, `{"message":"title too long","field":"title"}`)
	n, rec := newNotifier()
	store := tasks.New(rest.New(api.New(fake.URL())), n)

	_, err := store.Add(context.Background(), service.Draft{Title: "very long"})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if appErr.Kind != apperr.KindValidation || appErr.Field != "title" {
		t.Errorf("expected title validation error, got %+v", appErr)
	}
	if len(store.Tasks()) != 0 {
		t.Errorf("expected list unchanged, got %+v", store.Tasks())
	}
	if len(rec.shown) != 1 || rec.shown[0].Message != "title too long" {
		t.Errorf("expected server message verbatim, got %+v", rec.shown)
	}
	if store.IsLoading() {
		t.Error("loading flag left set")
	}
}

func TestAdd_Authenticated(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	n, rec := newNotifier()
	store := tasks.New(rest.New(api.New(fake.URL())), n)

	task, err := store.Add(context.Background(), service.Draft{Title: "Buy milk", DueDate: service.NewDate(2026, 5, 5)})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.ID == "" {
		t.Error("expected server id")
	}
	if got := store.Tasks(); len(got) != 1 || got[0].ID != task.ID {
		t.Errorf("expected appended task, got %+v", got)
	}
	if len(rec.shown) != 1 || rec.shown[0].Title != "toast.createTaskSuccess" {
		t.Errorf("expected success notification, got %+v", rec.shown)
	}
}

func TestDemoMutations_NoNetworkNoLoading(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	n, rec := newNotifier()
	store := tasks.New(demoRepo(), n)
	ctx := context.Background()

	task, err := store.Add(ctx, service.Draft{Title: "Demo task"})
	if err != nil {
		t.Fatal(err)
	}
	if store.IsLoading() {
		t.Error("loading after demo add")
	}
	if len(task.ID) < len(demo.IDPrefix) || task.ID[:len(demo.IDPrefix)] != demo.IDPrefix {
		t.Errorf("expected demo id, got %q", task.ID)
	}

	task.Title = "Renamed"
	if err := store.Update(ctx, task); err != nil {
		t.Fatal(err)
	}
	if err := store.ToggleStatus(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, "demo-1"); err != nil {
		t.Fatal(err)
	}
	if store.IsLoading() {
		t.Error("loading after demo mutations")
	}

	if n := len(fake.Requests()); n != 0 {
		t.Errorf("demo mode issued %d requests", n)
	}
	got, ok := store.Get(task.ID)
	if !ok || got.Title != "Renamed" || got.Status != service.StatusInProgress {
		t.Errorf("unexpected task %+v", got)
	}
	if _, ok := store.Get("demo-1"); ok {
		t.Error("demo-1 should be removed")
	}
	for _, shown := range rec.shown {
		if shown.Title != "demo.title" {
			t.Errorf("expected demo notification, got %+v", shown)
		}
	}
	if len(rec.shown) != 4 {
		t.Errorf("expected 4 notifications, got %d", len(rec.shown))
	}
}

func TestUpdate_DemoUnknownIDIsNoop(t *testing.T) {
	n, _ := newNotifier()
	store := tasks.New(demoRepo(), n)
	before := store.Tasks()

	if err := store.Update(context.Background(), sampleTask("missing", service.StatusTodo)); err != nil {
		t.Fatal(err)
	}

	after := store.Tasks()
	if len(after) != len(before) {
		t.Fatalf("expected %d tasks, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Title != before[i].Title || after[i].Status != before[i].Status {
			t.Errorf("task %d changed", i)
		}
	}
}

func TestToggleStatus_Cycle(t *testing.T) {
	repo := testutil.NewFakeRepository(service.ModeAuthenticated)
	repo.AddTask(sampleTask("t1", service.StatusTodo))
	n, _ := newNotifier()
	store := tasks.New(repo, n)
	ctx := context.Background()
	if err := store.Fetch(ctx); err != nil {
		t.Fatal(err)
	}

	want := []service.Status{service.StatusInProgress, service.StatusCompleted, service.StatusTodo}
	for i, w := range want {
		if err := store.ToggleStatus(ctx, "t1"); err != nil {
			t.Fatal(err)
		}
		got, _ := store.Get("t1")
		if got.Status != w {
			t.Errorf("toggle %d: expected %s, got %s", i+1, w, got.Status)
		}
	}
	if remote := repo.Snapshot()[0].Status; remote != service.StatusTodo {
		t.Errorf("expected remote status TODO, got %s", remote)
	}
}

func TestToggleStatus_CycleProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.SampledFrom(service.Statuses).Draw(rt, "start")
		repo := testutil.NewFakeRepository(service.ModeAuthenticated)
		repo.AddTask(sampleTask("t1", start))
		store := tasks.New(repo, nil)
		ctx := context.Background()
		if err := store.Fetch(ctx); err != nil {
			rt.Fatal(err)
		}

		for range 3 {
			if err := store.ToggleStatus(ctx, "t1"); err != nil {
				rt.Fatal(err)
			}
		}
		if got, _ := store.Get("t1"); got.Status != start {
			rt.Fatalf("three toggles from %s ended at %s", start, got.Status)
		}
	})
}

func TestToggleStatus_UnknownIDIsSilent(t *testing.T) {
	repo := testutil.NewFakeRepository(service.ModeAuthenticated)
	n, rec := newNotifier()
	store := tasks.New(repo, n)

	if err := store.ToggleStatus(context.Background(), "missing"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.Calls() != 0 {
		t.Errorf("expected no remote call, got %d", repo.Calls())
	}
	if len(rec.shown) != 0 {
		t.Errorf("expected no notifications, got %+v", rec.shown)
	}
	if store.IsLoading() {
		t.Error("loading flag left set")
	}
}

func TestMutations_RemoteFailureLeavesListUnchanged(t *testing.T) {
	failure := apperr.NewAPI("Internal Server Error", 500, "/tasks/t1", "PUT")
	tests := []struct {
		name   string
		inject func(*testutil.FakeRepository)
		run    func(*tasks.Store) error
	}{
		{"update", func(r *testutil.FakeRepository) { r.UpdateErr = failure }, func(s *tasks.Store) error {
			task, _ := s.Get("t1")
			task.Title = "changed"
			return s.Update(context.Background(), task)
		}},
		{"remove", func(r *testutil.FakeRepository) { r.DeleteErr = failure }, func(s *tasks.Store) error {
			return s.Remove(context.Background(), "t1")
		}},
		{"toggle", func(r *testutil.FakeRepository) { r.SetStatusErr = failure }, func(s *tasks.Store) error {
			return s.ToggleStatus(context.Background(), "t1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewFakeRepository(service.ModeAuthenticated)
			repo.AddTask(sampleTask("t1", service.StatusTodo))
			n, rec := newNotifier()
			store := tasks.New(repo, n)
			if err := store.Fetch(context.Background()); err != nil {
				t.Fatal(err)
			}
			tt.inject(repo)

			if err := tt.run(store); err == nil {
				t.Fatal("expected error")
			}

			got, ok := store.Get("t1")
			if !ok || got.Title != "Task t1" || got.Status != service.StatusTodo {
				t.Errorf("local state changed: %+v ok=%v", got, ok)
			}
			if store.IsLoading() {
				t.Error("loading flag left set")
			}
			if len(rec.shown) != 1 || rec.shown[0].Variant != notify.VariantDestructive {
				t.Errorf("expected one error notification, got %+v", rec.shown)
			}
		})
	}
}

func TestModeSwitch_ListsNotMerged(t *testing.T) {
	remote := testutil.NewFakeRepository(service.ModeAuthenticated)
	remote.AddTask(sampleTask("t1", service.StatusTodo))
	n, _ := newNotifier()
	store := tasks.New(remote, n)
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	store.SetRepository(demoRepo())
	if store.Mode() != service.ModeDemo || len(store.Tasks()) != 5 {
		t.Fatalf("expected seeded demo list, got %d tasks in %s", len(store.Tasks()), store.Mode())
	}
	if _, ok := store.Get("t1"); ok {
		t.Error("remote task visible in demo mode")
	}

	store.SetRepository(remote)
	if got := store.Tasks(); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected remote list back, got %+v", got)
	}
}

func TestInvalidation_DropsAuthenticatedList(t *testing.T) {
	bus := session.NewBus()
	repo := testutil.NewFakeRepository(service.ModeAuthenticated)
	repo.AddTask(sampleTask("t1", service.StatusTodo))
	n, _ := newNotifier()
	store := tasks.New(repo, n, tasks.WithBus(bus))
	defer store.Close()
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	bus.Publish(session.Invalidation{Reason: session.ReasonExpired})

	if len(store.Tasks()) != 0 {
		t.Errorf("expected authenticated list dropped, got %+v", store.Tasks())
	}
}

// endingRepo ends the session while a request is in flight.
type endingRepo struct {
	*testutil.FakeRepository
	bus *session.Bus
}

func (r endingRepo) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	task, err := r.FakeRepository.Create(ctx, draft)
	r.bus.Publish(session.Invalidation{Reason: session.ReasonUnauthorized})
	return task, err
}

func (r endingRepo) SetStatus(ctx context.Context, id string, status service.Status) error {
	err := r.FakeRepository.SetStatus(ctx, id, status)
	r.bus.Publish(session.Invalidation{Reason: session.ReasonUnauthorized})
	return err
}

func TestInvalidation_LateResultsNotApplied(t *testing.T) {
	bus := session.NewBus()
	repo := endingRepo{FakeRepository: testutil.NewFakeRepository(service.ModeAuthenticated), bus: bus}
	repo.AddTask(sampleTask("t1", service.StatusTodo))
	repo.AddTask(sampleTask("t2", service.StatusTodo))
	n, _ := newNotifier()
	store := tasks.New(repo, n, tasks.WithBus(bus))
	defer store.Close()
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Add(context.Background(), service.Draft{Title: "late", DueDate: service.NewDate(2026, 5, 5)}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := store.Tasks(); len(got) != 0 {
		t.Errorf("expected the ended session's list to stay dropped, got %+v", got)
	}

	// A fresh fetch starts after the invalidation and is applied.
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := store.Tasks(); len(got) != 3 {
		t.Fatalf("expected 3 tasks after refetch, got %+v", got)
	}

	if err := store.ToggleStatus(context.Background(), "t1"); err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if got := store.Tasks(); len(got) != 0 {
		t.Errorf("expected toggle not to resurrect the list, got %+v", got)
	}
}

func TestLoad(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	created := fake.AddTask(api.WireTask{Title: "Remote", Status: "TODO", Priority: "LOW"})
	n, rec := newNotifier()
	store := tasks.New(rest.New(api.New(fake.URL())), n)

	task, err := store.Load(context.Background(), string(created.ID))
	if err != nil || task.Title != "Remote" {
		t.Fatalf("Load: %+v, %v", task, err)
	}
	if _, ok := store.Get(task.ID); !ok {
		t.Error("expected loaded task cached locally")
	}

	_, err = store.Load(context.Background(), "404")
	if appErr := apperr.From(err); appErr.Kind != apperr.KindAPI || appErr.Status != 404 {
		t.Errorf("expected API 404, got %+v", appErr)
	}
	if len(rec.shown) != 1 {
		t.Errorf("expected one error notification, got %d", len(rec.shown))
	}
}

func TestLoad_DemoNotFound(t *testing.T) {
	store := tasks.New(demoRepo(), nil)
	_, err := store.Load(context.Background(), "nope")
	if apperr.From(err).Kind != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
