// Package tasks is the single source of truth for the task list shown to
// the user. A Store mediates between the demo and remote repositories:
// remote mutations are sent first and applied locally only after they
// succeed, so the local list is never partially updated.
package tasks

import (
	"context"
	"slices"
	"sync"

	"github.com/go-logr/logr"

	"taskflow/internal/apperr"
	"taskflow/internal/notify"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// Operation names passed as notification context.
const (
	OpFetch        = "fetchTasks"
	OpFetchOne     = "fetchTask"
	OpCreate       = "createTask"
	OpUpdate       = "updateTask"
	OpDelete       = "deleteTask"
	OpUpdateStatus = "updateTaskStatus"
)

// Store holds one task list per mode. Only the list of the current
// repository's mode is visible; switching modes never merges lists.
type Store struct {
	notifier notify.Notifier
	log      logr.Logger

	mu      sync.Mutex
	repo    service.Repository
	lists   map[service.Mode][]service.Task
	loading int
	err     string
	unsub   func()

	// epoch counts session invalidations. Remote results are applied
	// only if none happened while the request was in flight.
	epoch uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithBus drops the authenticated list whenever the session is
// invalidated.
func WithBus(bus *session.Bus) Option {
	return func(s *Store) {
		s.unsub = bus.Subscribe(s.onInvalidation)
	}
}

// New creates a Store over repo.
func New(repo service.Repository, notifier notify.Notifier, opts ...Option) *Store {
	s := &Store{
		notifier: notifier,
		log:      logr.Discard(),
		lists:    make(map[service.Mode][]service.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.SetRepository(repo)
	return s
}

// Close stops listening for session invalidations.
func (s *Store) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// SetRepository switches the authoritative backing store. The demo list is
// seeded from the demo repository the first time demo mode is entered.
func (s *Store) SetRepository(repo service.Repository) {
	s.mu.Lock()
	s.repo = repo
	mode := repo.Mode()
	_, seeded := s.lists[mode]
	s.mu.Unlock()

	s.log.V(1).Info("mode switched", "mode", string(mode))

	if mode != service.ModeDemo || seeded {
		return
	}
	// The demo repository is in memory; listing it cannot fail or block.
	list, err := repo.List(context.Background())
	if err != nil {
		s.log.Error(err, "failed to seed demo tasks")
		return
	}
	s.mu.Lock()
	if _, ok := s.lists[mode]; !ok {
		s.lists[mode] = list
	}
	s.mu.Unlock()
}

// Mode returns the current mode.
func (s *Store) Mode() service.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Mode()
}

// Tasks returns a copy of the authoritative list.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lists[s.repo.Mode()])
}

// IsLoading reports whether a remote operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Err returns the diagnostic message of the last failed operation, or ""
// if the last operation succeeded.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Get looks up a task in the authoritative list.
func (s *Store) Get(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[s.repo.Mode()]
	if i := indexOf(list, id); i >= 0 {
		return list[i], true
	}
	return service.Task{}, false
}

// Fetch replaces the authenticated list with the server's. It does
// nothing in demo mode. On failure the list is unchanged and the error
// notification offers a retry.
func (s *Store) Fetch(ctx context.Context) error {
	repo, mode, epoch := s.begin()
	if mode == service.ModeDemo {
		return nil
	}

	s.startLoading()
	list, err := repo.List(ctx)
	s.stopLoading()
	if err != nil {
		return s.fail(err, OpFetch, s.Fetch)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		s.lists[mode] = list
	}
	s.mu.Unlock()
	return nil
}

// Load returns a task by id, asking the server for it in authenticated
// mode and refreshing the local copy.
func (s *Store) Load(ctx context.Context, id string) (service.Task, error) {
	repo, mode, epoch := s.begin()
	if mode == service.ModeDemo {
		if task, ok := s.Get(id); ok {
			return task, nil
		}
		return service.Task{}, apperr.NewGeneric("task "+id+" not found", apperr.KindNotFound)
	}

	s.startLoading()
	task, err := repo.Get(ctx, id)
	s.stopLoading()
	if err != nil {
		return service.Task{}, s.fail(err, OpFetchOne, nil)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		list := s.lists[mode]
		if i := indexOf(list, id); i >= 0 {
			list[i] = task
		} else {
			s.lists[mode] = append(list, task)
		}
	}
	s.mu.Unlock()
	return task, nil
}

// Add creates a task from draft and appends it.
func (s *Store) Add(ctx context.Context, draft service.Draft) (service.Task, error) {
	repo, mode, epoch := s.begin()

	s.startRemote(mode)
	task, err := repo.Create(ctx, draft)
	s.stopRemote(mode)
	if err != nil {
		return service.Task{}, s.fail(err, OpCreate, nil)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		s.lists[mode] = append(s.lists[mode], task)
	}
	s.mu.Unlock()

	s.succeed(mode, "demo.created", "toast.createTaskSuccess", "toast.createTaskMessage")
	return task, nil
}

// Update replaces the task with the same id. An unknown id leaves the list
// unchanged.
func (s *Store) Update(ctx context.Context, task service.Task) error {
	repo, mode, epoch := s.begin()

	s.startRemote(mode)
	err := repo.Update(ctx, task)
	s.stopRemote(mode)
	if err != nil {
		return s.fail(err, OpUpdate, nil)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		list := s.lists[mode]
		if i := indexOf(list, task.ID); i >= 0 {
			list[i] = task
		}
	}
	s.mu.Unlock()

	s.succeed(mode, "demo.updated", "toast.updateTaskSuccess", "toast.updateTaskMessage")
	return nil
}

// Remove deletes a task.
func (s *Store) Remove(ctx context.Context, id string) error {
	repo, mode, epoch := s.begin()

	s.startRemote(mode)
	err := repo.Delete(ctx, id)
	s.stopRemote(mode)
	if err != nil {
		return s.fail(err, OpDelete, nil)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		s.lists[mode] = slices.DeleteFunc(s.lists[mode], func(t service.Task) bool { return t.ID == id })
	}
	s.mu.Unlock()

	s.succeed(mode, "demo.deleted", "toast.deleteTaskSuccess", "toast.deleteTaskMessage")
	return nil
}

// ToggleStatus advances a task along TODO -> IN_PROGRESS -> COMPLETED ->
// TODO. An unknown id is a silent no-op.
func (s *Store) ToggleStatus(ctx context.Context, id string) error {
	repo, mode, epoch := s.begin()

	current, ok := s.Get(id)
	if !ok {
		return nil
	}
	next := current.Status.Next()

	s.startRemote(mode)
	err := repo.SetStatus(ctx, id, next)
	s.stopRemote(mode)
	if err != nil {
		return s.fail(err, OpUpdateStatus, nil)
	}

	s.mu.Lock()
	if s.currentLocked(mode, epoch) {
		list := s.lists[mode]
		if i := indexOf(list, id); i >= 0 {
			list[i].Status = next
		}
	}
	s.mu.Unlock()

	s.succeed(mode, "demo.statusUpdated", "toast.updateStatusSuccess", "toast.updateStatusMessage")
	return nil
}

// begin clears the last error and captures the repository for the
// operation, so a mode switch mid-flight applies the result to the list
// that issued it.
func (s *Store) begin() (service.Repository, service.Mode, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
	return s.repo, s.repo.Mode(), s.epoch
}

// currentLocked reports whether a result for mode that started at epoch
// may still be applied. The authenticated list of an ended session is
// never resurrected. s.mu must be held.
func (s *Store) currentLocked(mode service.Mode, epoch uint64) bool {
	return mode == service.ModeDemo || s.epoch == epoch
}

func (s *Store) startLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *Store) stopLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

// Demo mutations complete synchronously and never mark the store loading.
func (s *Store) startRemote(mode service.Mode) {
	if mode != service.ModeDemo {
		s.startLoading()
	}
}

func (s *Store) stopRemote(mode service.Mode) {
	if mode != service.ModeDemo {
		s.stopLoading()
	}
}

func (s *Store) fail(err error, op string, retry notify.RetryFunc) error {
	appErr := apperr.From(err)

	s.mu.Lock()
	s.err = appErr.Message
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Error(appErr, op, retry)
	}
	return appErr
}

func (s *Store) succeed(mode service.Mode, demoKey, titleKey, messageKey string) {
	if s.notifier == nil {
		return
	}
	if mode == service.ModeDemo {
		s.notifier.Success(s.notifier.T("demo.title", nil), s.notifier.T(demoKey, nil))
		return
	}
	s.notifier.Success(s.notifier.T(titleKey, nil), s.notifier.T(messageKey, nil))
}

func (s *Store) onInvalidation(ev session.Invalidation) {
	s.mu.Lock()
	delete(s.lists, service.ModeAuthenticated)
	s.epoch++
	s.mu.Unlock()
	s.log.V(1).Info("session invalidated, dropped authenticated tasks", "reason", string(ev.Reason))
}

func indexOf(list []service.Task, id string) int {
	return slices.IndexFunc(list, func(t service.Task) bool { return t.ID == id })
}
