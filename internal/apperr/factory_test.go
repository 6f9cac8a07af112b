package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"google.golang.org/api/googleapi"
)

func httpFailure(method, endpoint string, status int, body string) error {
	return &RequestError{
		Method:   method,
		Endpoint: endpoint,
		Err:      &googleapi.Error{Code: status, Body: body},
	}
}

func TestFromTransportFailure_NoResponseIsNetwork(t *testing.T) {
	inputs := []error{
		errors.New("connection reset"),
		&url.Error{Op: "Get", URL: "http://x/api/tasks", Err: errors.New("EOF")},
		&RequestError{Method: "GET", Endpoint: "/tasks", Err: context.DeadlineExceeded},
		&RequestError{Method: "GET", Endpoint: "/tasks", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
	}
	for _, in := range inputs {
		got := FromTransportFailure(in)
		if got.Kind != KindNetwork {
			t.Errorf("FromTransportFailure(%v).Kind = %s, want NETWORK", in, got.Kind)
		}
		if got.HasStatus() {
			t.Errorf("network error must not carry a status: %+v", got)
		}
		if got.Severity != SeverityHigh {
			t.Errorf("network severity = %s, want HIGH", got.Severity)
		}
	}
}

func TestFromTransportFailure_OfflineDetection(t *testing.T) {
	dial := &RequestError{Method: "GET", Endpoint: "/tasks", Err: &url.Error{
		Op:  "Get",
		URL: "http://x/api/tasks",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: network is unreachable")},
	}}
	if got := FromTransportFailure(dial); !got.IsOffline {
		t.Errorf("dial failure should be offline: %+v", got)
	}

	dns := &net.DNSError{Err: "no such host", Name: "api.example.com"}
	if got := FromTransportFailure(dns); !got.IsOffline {
		t.Errorf("dns failure should be offline: %+v", got)
	}

	timeout := &RequestError{Method: "GET", Endpoint: "/tasks", Err: context.DeadlineExceeded}
	got := FromTransportFailure(timeout)
	if got.IsOffline {
		t.Errorf("timeout should not be offline: %+v", got)
	}
	if got.Message != "request timed out" {
		t.Errorf("timeout message = %q", got.Message)
	}
}

func TestFromTransportFailure_TokenExpired(t *testing.T) {
	for _, msg := range []string{"Token expired", "JWT EXPIRED", "your session expired, sign in"} {
		body := fmt.Sprintf(`{"message":%q}`, msg)
		got := FromTransportFailure(httpFailure("GET", "/tasks", 401, body))
		if got.Kind != KindAuth {
			t.Fatalf("kind = %s, want AUTH", got.Kind)
		}
		if !got.IsTokenExpired {
			t.Errorf("message %q on /tasks should mark token expired", msg)
		}
		if got.Message != msg {
			t.Errorf("message = %q, want %q", got.Message, msg)
		}
	}
}

func TestFromTransportFailure_LoginNeverExpired(t *testing.T) {
	for _, ep := range []string{"/auth/login", "/auth/register", "/auth/refresh"} {
		got := FromTransportFailure(httpFailure("POST", ep, 401, `{"message":"token expired"}`))
		if got.Kind != KindAuth {
			t.Fatalf("kind = %s, want AUTH", got.Kind)
		}
		if got.IsTokenExpired {
			t.Errorf("401 on %s must not be token expiry", ep)
		}
	}
}

func TestFromTransportFailure_AuthWithoutIndicator(t *testing.T) {
	got := FromTransportFailure(httpFailure("GET", "/tasks", 401, `{"message":"invalid token"}`))
	if got.IsTokenExpired {
		t.Error("plain 401 must not be token expiry")
	}

	got = FromTransportFailure(httpFailure("GET", "/tasks", 403, `{"message":"token expired"}`))
	if got.Kind != KindAuth || got.IsTokenExpired {
		t.Errorf("403 = %+v, want AUTH without expiry", got)
	}

	got = FromTransportFailure(httpFailure("GET", "/tasks", 401, ``))
	if got.Message != FallbackAuthMessage {
		t.Errorf("empty body message = %q, want fallback", got.Message)
	}
}

func TestFromTransportFailure_Validation(t *testing.T) {
	got := FromTransportFailure(httpFailure("POST", "/tasks", 422, `{"message":"title too long","field":"title","value":"xxx"}`))
	if got.Kind != KindValidation {
		t.Fatalf("kind = %s, want VALIDATION", got.Kind)
	}
	if got.Field != "title" {
		t.Errorf("field = %q, want title", got.Field)
	}
	if got.Value != "xxx" {
		t.Errorf("value = %v, want xxx", got.Value)
	}
	if got.Message != "title too long" {
		t.Errorf("message = %q", got.Message)
	}
	if got.Severity != SeverityLow {
		t.Errorf("severity = %s, want LOW", got.Severity)
	}
}

func TestFromTransportFailure_API(t *testing.T) {
	tests := []struct {
		status   int
		severity Severity
	}{
		{400, SeverityMedium},
		{404, SeverityMedium},
		{409, SeverityMedium},
		{429, SeverityMedium},
		{500, SeverityHigh},
		{503, SeverityHigh},
	}
	for _, tt := range tests {
		got := FromTransportFailure(httpFailure("delete", "/tasks/7", tt.status, `not json`))
		if got.Kind != KindAPI {
			t.Fatalf("status %d: kind = %s, want API", tt.status, got.Kind)
		}
		if got.Status != tt.status {
			t.Errorf("status = %d, want %d", got.Status, tt.status)
		}
		if got.Severity != tt.severity {
			t.Errorf("status %d: severity = %s, want %s", tt.status, got.Severity, tt.severity)
		}
		if got.Endpoint != "/tasks/7" || got.Method != "DELETE" {
			t.Errorf("endpoint/method = %s %s", got.Method, got.Endpoint)
		}
		if got.Message != FallbackAPIMessage {
			t.Errorf("message = %q, want fallback", got.Message)
		}
	}
}

func TestFromTransportFailure_KeepsClassifiedErrors(t *testing.T) {
	orig := NewAuth("Session expired", true)
	wrapped := &RequestError{Method: "GET", Endpoint: "/tasks", Err: orig}
	if got := FromTransportFailure(wrapped); got != orig {
		t.Errorf("expected the original error back, got %+v", got)
	}
}

func TestFromTransportFailure_Nil(t *testing.T) {
	got := FromTransportFailure(nil)
	if got == nil || got.Kind != KindUnknown {
		t.Errorf("nil failure = %+v, want UNKNOWN", got)
	}
}

func TestFrom(t *testing.T) {
	plain := errors.New("boom")
	got := From(plain)
	if got.Kind != KindUnknown || got.Message != "boom" {
		t.Errorf("From(plain) = %+v", got)
	}
	if !errors.Is(got, plain) {
		t.Error("From should keep the cause")
	}

	v := NewValidation("bad", "title", nil)
	if From(fmt.Errorf("wrapped: %w", v)) != v {
		t.Error("From should unwrap classified errors")
	}
}

func TestConstructors(t *testing.T) {
	if e := NewGeneric("x", ""); e.Kind != KindUnknown || e.Severity != SeverityMedium {
		t.Errorf("NewGeneric default = %+v", e)
	}
	if e := NewGeneric("x", KindNotFound); e.Kind != KindNotFound {
		t.Errorf("NewGeneric kind = %s", e.Kind)
	}
	if e := NewAuth("x", true); !e.IsTokenExpired || e.HasStatus() {
		t.Errorf("NewAuth = %+v", e)
	}
	if e := NewNetwork("x", true); !e.IsOffline {
		t.Errorf("NewNetwork = %+v", e)
	}
	if e := NewAPI("x", 502, "/tasks", "GET"); !e.HasStatus() || e.Timestamp.IsZero() {
		t.Errorf("NewAPI = %+v", e)
	}
}
