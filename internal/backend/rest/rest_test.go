package rest_test

import (
	"context"
	"net/http"
	"testing"

	"taskflow/internal/api"
	"taskflow/internal/apperr"
	"taskflow/internal/backend/rest"
	"taskflow/internal/service"
	"taskflow/internal/testutil"
)

func TestRepository_Mode(t *testing.T) {
	repo := rest.New(api.New("http://unused"))
	if repo.Mode() != service.ModeAuthenticated {
		t.Errorf("expected AUTHENTICATED, got %s", repo.Mode())
	}
}

func TestRepository_CRUD(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	repo := rest.New(api.New(fake.URL()))
	ctx := context.Background()

	created, err := repo.Create(ctx, service.Draft{
		Title:    "Plan sprint",
		Priority: service.PriorityHigh,
		DueDate:  service.NewDate(2026, 6, 1),
		Tags:     []string{"work"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Status != service.StatusTodo || created.DueDate.String() != "2026-06-01" {
		t.Errorf("unexpected created task %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected server creation time")
	}
	if got := fake.Tasks()[0].DueDate; got != "2026-06-01T17:00:00" {
		t.Errorf("expected fixed time of day on the wire, got %q", got)
	}

	created.Description = "with notes"
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.SetStatus(ctx, created.ID, service.StatusInProgress); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "with notes" || got.Status != service.StatusInProgress {
		t.Errorf("unexpected task %+v", got)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list, got %+v, %v", list, err)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	repo := rest.New(api.New(fake.URL()))

	_, err := repo.Get(context.Background(), "404")

	appErr := apperr.From(err)
	if appErr.Kind != apperr.KindAPI || appErr.Status != http.StatusNotFound {
		t.Errorf("expected API 404, got %+v", appErr)
	}
}
