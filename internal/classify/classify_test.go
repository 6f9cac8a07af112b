package classify

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"taskflow/internal/apperr"
)

// echo returns the key, with the context variable appended when present.
func echo(key string, vars map[string]string) string {
	if ctx := vars["context"]; ctx != "" {
		return key + "|" + ctx
	}
	return key
}

func TestKey(t *testing.T) {
	tests := []struct {
		err  *apperr.Error
		want string
	}{
		{apperr.NewAPI("x", 404, "/tasks/1", "GET"), "API_404"},
		{apperr.NewAPI("x", 418, "/tasks", "GET"), "API_418"},
		{apperr.NewNetwork("x", false), "NETWORK"},
		{apperr.NewNetwork("x", true), "NETWORK_OFFLINE"},
		{apperr.NewAuth("x", false), "AUTH"},
		{apperr.NewAuth("x", true), "AUTH_EXPIRED"},
		{apperr.NewValidation("x", "title", nil), "VALIDATION"},
		{apperr.NewGeneric("x", apperr.KindPermission), "UNKNOWN"},
		{apperr.NewGeneric("x", ""), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := Key(tt.err); got != tt.want {
			t.Errorf("Key(%s) = %q, want %q", tt.err.Kind, got, tt.want)
		}
	}
}

func TestBuildResponse_CatalogMessages(t *testing.T) {
	got := BuildResponse(apperr.NewNetwork("dial tcp: refused", false), echo, "fetchTasks")
	want := Response{
		Title:   "errors.networkError",
		Message: "errors.networkErrorMessage|fetchTasks",
		Action:  ActionRetry,
		Retry:   true,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = BuildResponse(apperr.NewNetwork("x", true), echo, "")
	if got.Title != "errors.offline" || !got.Retry || got.Action != "" {
		t.Errorf("offline response = %+v", got)
	}

	got = BuildResponse(apperr.NewAPI("slow down", 429, "/tasks", "GET"), echo, "")
	if got.Title != "errors.tooManyRequests" || !got.Retry {
		t.Errorf("rate limit response = %+v", got)
	}

	got = BuildResponse(apperr.NewAuth("Session expired", true), echo, "")
	if got.Message != "errors.sessionExpiredMessage" || got.Action != ActionLogin || got.Retry {
		t.Errorf("expired response = %+v", got)
	}
}

func TestBuildResponse_ServerMessages(t *testing.T) {
	got := BuildResponse(apperr.NewValidation("title too long", "title", nil), echo, "createTask")
	if got.Message != "title too long" {
		t.Errorf("validation message = %q", got.Message)
	}
	if got.Title != "errors.validationError" {
		t.Errorf("validation title = %q", got.Title)
	}

	got = BuildResponse(apperr.NewValidation(apperr.FallbackValidationMessage, "", nil), echo, "createTask")
	if got.Message != "errors.validationErrorMessage|createTask" {
		t.Errorf("generic validation should use catalog, got %q", got.Message)
	}

	got = BuildResponse(apperr.NewAuth("Invalid email or password", false), echo, "login")
	if got.Message != "Invalid email or password" {
		t.Errorf("auth message = %q", got.Message)
	}

	got = BuildResponse(apperr.NewAPI("Task not found", 404, "/tasks/9", "GET"), echo, "")
	if got.Message != "Task not found" || got.Title != "errors.notFound" {
		t.Errorf("api response = %+v", got)
	}
}

func TestBuildResponse_UnmappedFallsBackToUnknown(t *testing.T) {
	got := BuildResponse(apperr.NewAPI("teapot", 418, "/tasks", "GET"), echo, "")
	if got.Title != "errors.unknown" || !got.Retry {
		t.Errorf("unmapped response = %+v", got)
	}
}

func TestBuildResponse_RetryMatchesAction(t *testing.T) {
	for key, m := range messages {
		if key == "" {
			t.Fatal("empty key in table")
		}
		if m.action != "" && m.action != ActionLogin && m.action != ActionRetry {
			t.Errorf("%s: unexpected action %q", key, m.action)
		}
	}
}

func TestShouldRetry_Statuses(t *testing.T) {
	statuses := []int{400, 401, 403, 404, 409, 422, 429, 500, 502, 503}
	for _, status := range statuses {
		want := status >= 500 || status == 429
		if got := ShouldRetry(apperr.NewAPI("x", status, "/tasks", "GET")); got != want {
			t.Errorf("ShouldRetry(API %d) = %v, want %v", status, got, want)
		}
		// Non-API kinds never carry a status and are never retried.
		for _, e := range []*apperr.Error{
			apperr.NewAuth("x", status == 401),
			apperr.NewValidation("x", "", nil),
			apperr.NewGeneric("x", apperr.KindNotFound),
			apperr.NewGeneric("x", apperr.KindPermission),
			apperr.NewGeneric("x", apperr.KindUnknown),
		} {
			if ShouldRetry(e) {
				t.Errorf("ShouldRetry(%s) = true, want false", e.Kind)
			}
		}
	}
	if !ShouldRetry(apperr.NewNetwork("x", false)) || !ShouldRetry(apperr.NewNetwork("x", true)) {
		t.Error("network errors should always be retried")
	}
}

func TestShouldRetry_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.SampledFrom([]apperr.Kind{
			apperr.KindNetwork, apperr.KindAPI, apperr.KindValidation, apperr.KindAuth,
			apperr.KindPermission, apperr.KindNotFound, apperr.KindUnknown,
		}).Draw(rt, "kind")
		status := rapid.IntRange(100, 599).Draw(rt, "status")

		var e *apperr.Error
		switch kind {
		case apperr.KindNetwork:
			e = apperr.NewNetwork("x", rapid.Bool().Draw(rt, "offline"))
		case apperr.KindAPI:
			e = apperr.NewAPI("x", status, "/tasks", "GET")
		case apperr.KindValidation:
			e = apperr.NewValidation("x", "f", nil)
		case apperr.KindAuth:
			e = apperr.NewAuth("x", rapid.Bool().Draw(rt, "expired"))
		default:
			e = apperr.NewGeneric("x", kind)
		}

		want := kind == apperr.KindNetwork || (kind == apperr.KindAPI && (status >= 500 || status == 429))
		if got := ShouldRetry(e); got != want {
			rt.Fatalf("ShouldRetry(%s %d) = %v, want %v", kind, status, got, want)
		}
	})
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{100, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := RetryDelay(tt.attempt); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryDelay_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 10000).Draw(rt, "n")
		d := RetryDelay(n)
		if d > MaxDelay {
			rt.Fatalf("RetryDelay(%d) = %v exceeds max", n, d)
		}
		if next := RetryDelay(n + 1); next < d {
			rt.Fatalf("RetryDelay(%d) = %v > RetryDelay(%d) = %v", n, d, n+1, next)
		}
	})
}
