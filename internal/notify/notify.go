// Package notify turns classified errors and success messages into
// transient notifications and keeps retry callbacks for as long as the
// notification that offers them is alive.
package notify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/classify"
)

// DefaultTTL is how long a notification stays active before Sweep drops it.
const DefaultTTL = 30 * time.Second

// ErrNoRetry is returned by Retry when the notification has no live
// retry callback.
var ErrNoRetry = errors.New("no retry available")

// Variant selects how a notification is styled.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Variant   Variant
	Action    string
	Retryable bool // a retry callback is registered under ID
	Warning   bool // default styling, but reported on the error stream
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifier is the surface other packages use to report outcomes.
// *Dispatcher implements it.
type Notifier interface {
	Error(err error, context string, retry RetryFunc) Notification
	Success(title, message string) Notification
	T(key string, vars map[string]string) string
}

// Sink displays notifications.
type Sink interface {
	Show(n Notification)
}

// RetryFunc repeats a failed operation.
type RetryFunc func(ctx context.Context) error

// Dispatcher builds, shows and tracks notifications. It is safe for
// concurrent use.
type Dispatcher struct {
	sink   Sink
	t      classify.TranslateFunc
	logger *classify.Logger
	ttl    time.Duration
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	seq      uint64
	active   map[string]Notification
	retries  map[string]RetryFunc
	attempts map[string]int // failed retries per notification
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTTL sets how long notifications stay active.
func WithTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) { d.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithSleep replaces the wait between retry attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

// New creates a Dispatcher that shows notifications on sink, resolves text
// with t and logs errors with logger.
func New(sink Sink, t classify.TranslateFunc, logger *classify.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:    sink,
		t:       t,
		logger:  logger,
		ttl:     DefaultTTL,
		now:      time.Now,
		sleep:    sleepContext,
		active:   make(map[string]Notification),
		retries:  make(map[string]RetryFunc),
		attempts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// T resolves a localization key.
func (d *Dispatcher) T(key string, vars map[string]string) string {
	return d.t(key, vars)
}

// Error shows a destructive notification for err and logs it. Errors that
// are not classified yet are treated as unknown. When retry is non-nil and
// the error is retry-eligible, retry is kept under the notification's ID
// until the notification is dismissed, expires, or the retry succeeds.
func (d *Dispatcher) Error(err error, context string, retry RetryFunc) Notification {
	appErr := apperr.From(err)
	resp := classify.BuildResponse(appErr, d.t, context)

	d.mu.Lock()
	n := d.newLocked(resp.Title, resp.Message, VariantDestructive)
	n.Action = resp.Action
	if retry != nil && resp.Retry {
		d.retries[n.ID] = retry
		n.Retryable = true
	}
	d.active[n.ID] = n
	d.mu.Unlock()

	d.show(n)
	if d.logger != nil {
		d.logger.LogError(appErr, context)
	}
	return n
}

// Success shows a default notification.
func (d *Dispatcher) Success(title, message string) Notification {
	return d.plain(title, message, false)
}

// Warning shows a default notification that sinks keep off the result
// stream.
func (d *Dispatcher) Warning(title, message string) Notification {
	return d.plain(title, message, true)
}

func (d *Dispatcher) plain(title, message string, warning bool) Notification {
	d.mu.Lock()
	n := d.newLocked(title, message, VariantDefault)
	n.Warning = warning
	d.active[n.ID] = n
	d.mu.Unlock()

	d.show(n)
	return n
}

func (d *Dispatcher) newLocked(title, message string, variant Variant) Notification {
	d.seq++
	now := d.now()
	return Notification{
		ID:        strconv.FormatUint(d.seq, 10),
		Title:     title,
		Message:   message,
		Variant:   variant,
		CreatedAt: now,
		ExpiresAt: now.Add(d.ttl),
	}
}

// show never lets a failing sink reach the caller.
func (d *Dispatcher) show(n Notification) {
	if d.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.Log.Info("notification sink failed", "id", n.ID, "panic", fmt.Sprint(r))
		}
	}()
	d.sink.Show(n)
}

// Retry runs the callback registered under id. The first retry runs at
// once; later ones wait classify.RetryDelay. A successful retry dismisses
// the notification. A failed one keeps the callback for another attempt
// until classify.MaxAttempts retries have failed.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.Lock()
	fn, ok := d.retries[id]
	attempt := d.attempts[id]
	d.mu.Unlock()
	if !ok {
		return ErrNoRetry
	}

	if attempt > 0 {
		if err := d.sleep(ctx, classify.RetryDelay(attempt-1)); err != nil {
			return err
		}
	}

	if err := fn(ctx); err != nil {
		d.mu.Lock()
		d.attempts[id]++
		if d.attempts[id] >= classify.MaxAttempts {
			d.releaseLocked(id)
		}
		d.mu.Unlock()
		return err
	}
	d.Dismiss(id)
	return nil
}

// releaseLocked drops the retry callback for id but keeps the notification.
func (d *Dispatcher) releaseLocked(id string) {
	delete(d.retries, id)
	delete(d.attempts, id)
	if n, ok := d.active[id]; ok {
		n.Retryable = false
		d.active[id] = n
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Dismiss removes a notification and its retry callback.
func (d *Dispatcher) Dismiss(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, id)
	delete(d.retries, id)
	delete(d.attempts, id)
}

// Sweep dismisses every notification whose lifetime has ended and returns
// how many were removed.
func (d *Dispatcher) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for id, n := range d.active {
		if !now.Before(n.ExpiresAt) {
			delete(d.active, id)
			delete(d.retries, id)
			delete(d.attempts, id)
			removed++
		}
	}
	return removed
}

// Active returns the live notifications in creation order.
func (d *Dispatcher) Active() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make([]Notification, 0, len(d.active))
	for _, n := range d.active {
		result = append(result, n)
	}
	slices.SortFunc(result, byID)
	return result
}

// PendingRetries returns how many retry callbacks are registered.
func (d *Dispatcher) PendingRetries() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.retries)
}

// ClearRetryCallbacks drops every registered retry callback.
func (d *Dispatcher) ClearRetryCallbacks() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retries = make(map[string]RetryFunc)
	d.attempts = make(map[string]int)
	for id, n := range d.active {
		n.Retryable = false
		d.active[id] = n
	}
}

func byID(a, b Notification) int {
	if c := cmp.Compare(len(a.ID), len(b.ID)); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
