package commands

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"golang.org/x/term"

	"taskflow/internal/api"
	"taskflow/internal/auth"
	"taskflow/internal/backend/demo"
	"taskflow/internal/backend/rest"
	"taskflow/internal/classify"
	"taskflow/internal/config"
	"taskflow/internal/i18n"
	"taskflow/internal/notify"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/session"
	"taskflow/internal/tasks"
)

// Env is everything a command needs for one process, or for the whole
// lifetime of an interactive shell.
type Env struct {
	Config   *config.Config
	Log      logr.Logger
	T        *i18n.Translator
	Notices  *notify.Dispatcher
	Sessions *session.Manager
	Client   *api.Client
	Auth     *auth.Service
	Tasks    *tasks.Store
	Prompt   *Prompter
	Now      func() time.Time

	// TTY reports whether stdout is a terminal; Color whether it is styled.
	TTY   bool
	Color bool

	demo   service.Repository
	remote service.Repository
	unsub  func()
}

// EnvOption configures NewEnv.
type EnvOption func(*envOptions)

type envOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now everywhere in the environment.
func WithClock(now func() time.Time) EnvOption {
	return func(o *envOptions) { o.now = now }
}

// NewEnv wires the application for cfg. Prompts read from in; results go
// to out and notifications of failures to errOut.
func NewEnv(cfg *config.Config, in io.Reader, out, errOut io.Writer, opts ...EnvOption) (*Env, error) {
	o := envOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, err
	}

	logger := logr.Discard()
	if cfg.Debug {
		stdr.SetVerbosity(1)
		logger = stdr.New(log.New(errOut, "", log.LstdFlags)).WithName("taskflow")
	}

	tty := isTerminal(out)
	color := output.ConfigureColor(cfg.Color, tty)

	e := &Env{
		Config: cfg,
		Log:    logger,
		T:      tr,
		Now:    o.now,
		TTY:    tty,
		Color:  color,
		Prompt: NewPrompter(in, errOut),
	}

	sink := &notify.TerminalSink{Out: out, Err: errOut, Quiet: cfg.Quiet || cfg.JSON, Color: color}
	e.Notices = notify.New(sink, tr.T, classify.NewLogger(logger.WithName("errors"), cfg.APIURL), notify.WithClock(o.now))

	e.Sessions = session.NewManager(session.NewFileStore(cfg.SessionPath()), session.NewBus())
	e.Sessions.SetClock(o.now)

	e.Client = api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithSessions(e.Sessions),
		api.WithLogger(logger.WithName("api")),
		api.WithUserAgent(classify.UserAgent),
	)
	e.Auth = auth.New(e.Client, e.Sessions, e.Notices)

	e.demo = demo.New(demo.WithClock(o.now))
	e.remote = rest.New(e.Client)
	e.Tasks = tasks.New(e.selectRepository(), e.Notices,
		tasks.WithLogger(logger.WithName("tasks")),
		tasks.WithBus(e.Sessions.Bus()),
	)
	e.unsub = e.Sessions.Bus().Subscribe(e.onInvalidation)
	return e, nil
}

// Close releases subscriptions held by the environment.
func (e *Env) Close() {
	e.unsub()
	e.Tasks.Close()
}

// Today returns the current calendar date.
func (e *Env) Today() service.Date {
	return service.DateOf(e.Now())
}

// SyncMode points the task store at the repository matching the session
// state: demo when demo mode is forced or nobody is signed in.
func (e *Env) SyncMode() {
	repo := e.selectRepository()
	if e.Tasks.Mode() != repo.Mode() {
		e.Tasks.SetRepository(repo)
	}
}

func (e *Env) selectRepository() service.Repository {
	if e.Config.Demo {
		return e.demo
	}
	if _, ok := e.Sessions.Current(); ok {
		return e.remote
	}
	return e.demo
}

func (e *Env) onInvalidation(ev session.Invalidation) {
	// Retries would replay requests with credentials that no longer exist.
	e.Notices.ClearRetryCallbacks()
	// Other reasons surface through the failing request or the command
	// that caused them.
	if ev.Reason == session.ReasonExternal {
		e.Notices.Warning(e.T.T("errors.sessionExpired", nil), e.T.T("session.expired", nil))
	}
	e.SyncMode()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
