// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/i18n"
)

// EnvFactory builds the environment a command runs in.
// Used to inject a clock or test doubles during dispatch.
type EnvFactory func(cfg *config.Config, in io.Reader, out, errOut io.Writer) (*commands.Env, error)

// DefaultEnvFactory wires the real application.
func DefaultEnvFactory(cfg *config.Config, in io.Reader, out, errOut io.Writer) (*commands.Env, error) {
	return commands.NewEnv(cfg, in, out, errOut)
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  EnvFactory

	// In is where prompts read from. Defaults to os.Stdin.
	In io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and
// environment factory. A nil factory selects DefaultEnvFactory.
func NewDispatcher(registry *commands.Registry, factory EnvFactory) *Dispatcher {
	if factory == nil {
		factory = DefaultEnvFactory
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		In:       os.Stdin,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
	demo      bool
	lang      string
	json      bool
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "override config directory")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&f.debug, "debug", false, "print debug logs to stderr")
	fs.BoolVar(&f.demo, "demo", false, "use the local demo store instead of the server")
	fs.StringVar(&f.lang, "lang", "", "message language ("+strings.Join(i18n.Supported(), ", ")+")")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
}

// apply overrides cfg with the flags given on the command line.
func (f *commonFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if fs.Changed("debug") {
		cfg.Debug = f.debug
	}
	if fs.Changed("demo") {
		cfg.Demo = f.demo
	}
	if fs.Changed("lang") {
		cfg.Language = f.lang
	}
	if fs.Changed("json") {
		cfg.JSON = f.json
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	// Flags require a command
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	fs := commands.NewFlagSet(cmd)
	var common commonFlags
	common.register(fs)

	positional, code, ok := commands.ParseFlags(cmd, fs, args, out, errOut)
	if !ok {
		return code
	}

	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	common.apply(fs, cfg)

	env, err := d.factory(cfg, d.In, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.BackendError
	}
	defer env.Close()

	// Bootstrap clears a partial or expired session before anything runs.
	_, loggedIn := env.Auth.Bootstrap()
	if cmd.NeedsAuth() && !cfg.Demo && !loggedIn {
		fmt.Fprintln(errOut, "error: not logged in (run: taskflow login, or use --demo)")
		return exitcode.AuthError
	}
	env.SyncMode()

	return cmd.Run(ctx, env, positional, out, errOut)
}
