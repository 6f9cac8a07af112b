package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"taskflow/internal/api"
)

// Request is a request received by FakeAPI.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

type failure struct {
	status int
	body   string
}

type fakeUser struct {
	id       int
	username string
	email    string
	password string
}

// FakeAPI is an httptest server implementing the TaskFlow REST API in
// memory. Routes are served under /api.
type FakeAPI struct {
	Server *httptest.Server

	// AccessToken is issued at login and required on task routes when
	// RequireAuth is set.
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	RequireAuth  bool

	// UnauthorizedMessage is sent with 401 responses on task routes.
	UnauthorizedMessage string

	mu       sync.Mutex
	tasks    []api.WireTask
	nextID   int
	users    []fakeUser
	failures map[string]failure
	requests []Request
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		AccessToken:         "test-access-token",
		RefreshToken:        "test-refresh-token",
		ExpiresIn:           3600,
		UnauthorizedMessage: "Invalid token",
		failures:            make(map[string]failure),
	}

	mux := http.NewServeMux()
	f.route(mux, "POST /auth/login", f.login)
	f.route(mux, "POST /auth/register", f.register)
	f.route(mux, "POST /auth/forgot-password", f.acknowledge("If the account exists, an email has been sent"))
	f.route(mux, "POST /auth/reset-password", f.acknowledge("Password has been reset"))
	f.route(mux, "GET /tasks", f.authorized(f.listTasks))
	f.route(mux, "GET /tasks/{id}", f.authorized(f.getTask))
	f.route(mux, "POST /tasks", f.authorized(f.createTask))
	f.route(mux, "PUT /tasks/{id}", f.authorized(f.updateTask))
	f.route(mux, "DELETE /tasks/{id}", f.authorized(f.deleteTask))
	f.route(mux, "PATCH /tasks/{id}/status", f.authorized(f.updateStatus))

	f.Server = httptest.NewServer(http.StripPrefix("/api", mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// AddTask stores a task, assigning an id when it has none.
func (f *FakeAPI) AddTask(task api.WireTask) api.WireTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		f.nextID++
		task.ID = api.WireID(strconv.Itoa(f.nextID))
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Tasks returns a copy of the stored tasks.
func (f *FakeAPI) Tasks() []api.WireTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.WireTask(nil), f.tasks...)
}

// AddUser registers an account that can log in.
func (f *FakeAPI) AddUser(username, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, fakeUser{id: len(f.users) + 1, username: username, email: email, password: password})
}

// Fail makes every request to route (for example "POST /tasks") answer with
// status and body until ClearFailures is called.
func (f *FakeAPI) Fail(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: status, body: body}
}

// ClearFailures removes all injected failures.
func (f *FakeAPI) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = make(map[string]failure)
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *FakeAPI) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		fail, failing := f.failures[pattern]
		f.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			io.WriteString(w, fail.body)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		h(w, r)
	})
}

func (f *FakeAPI) authorized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f.RequireAuth && r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": f.UnauthorizedMessage})
			return
		}
		h(w, r)
	}
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.email == creds.Email && u.password == creds.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"accessToken":  f.AccessToken,
				"refreshToken": f.RefreshToken,
				"expiresIn":    f.ExpiresIn,
				"user":         map[string]any{"id": u.id, "username": u.username, "email": u.email},
			})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg api.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	for _, u := range f.users {
		if u.email == reg.Email {
			f.mu.Unlock()
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
			return
		}
	}
	f.users = append(f.users, fakeUser{id: len(f.users) + 1, username: reg.Username, email: reg.Email, password: reg.Password})
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (f *FakeAPI) acknowledge(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.Tasks())
}

func (f *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(r.PathValue("id")); i >= 0 {
		writeJSON(w, http.StatusOK, f.tasks[i])
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var task api.WireTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if task.Title == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Title is required", "field": "title"})
		return
	}
	task.ID = ""
	task.CreatedAt = "2026-01-01T09:00:00Z"
	writeJSON(w, http.StatusCreated, f.AddTask(task))
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var task api.WireTask
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	i := f.indexLocked(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	task.ID = api.WireID(id)
	f.tasks[i] = task
	writeJSON(w, http.StatusOK, task)
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	f.tasks[i].Status = body.Status
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *FakeAPI) indexLocked(id string) int {
	for i, t := range f.tasks {
		if string(t.ID) == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
