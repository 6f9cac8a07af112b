package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
	"taskflow/internal/notify"
	"taskflow/internal/session"
)

func init() {
	Register(&ShellCmd{registry: DefaultRegistry})
}

const shellHelp = `Shell commands:
  retry <notice>    Repeat the operation that failed with the given notice
  dismiss <notice>  Drop a notice and its retry
  notices           List active notices
  mode              Print the current mode (DEMO or AUTHENTICATED)
  exit, quit        Leave the shell
All other taskflow commands are available without the "taskflow" prefix.
`

// ShellCmd implements an interactive session. One environment, and so one
// task list, lives for the whole session.
type ShellCmd struct {
	registry *Registry
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Start an interactive session" }
func (c *ShellCmd) Usage() string     { return "taskflow shell [common flags]" }
func (c *ShellCmd) NeedsAuth() bool   { return false }

func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	if err := env.Config.EnsureDir(); err != nil {
		env.Log.Error(err, "session watcher disabled")
	} else {
		go func() {
			if err := session.Watch(watchCtx, env.Sessions, env.Log.WithName("session")); err != nil {
				env.Log.Error(err, "session watcher stopped")
			}
		}()
	}

	env.Auth.Bootstrap()
	env.SyncMode()
	if !env.Config.Quiet {
		fmt.Fprintf(out, "taskflow shell (%s mode). Type help for commands, exit to leave.\n", env.Tasks.Mode())
	}

	code := exitcode.Success
	for {
		if ctx.Err() != nil {
			return code
		}
		if env.Prompt.Interactive() {
			fmt.Fprint(out, "taskflow> ")
		}
		line, err := env.Prompt.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
			return code
		}
		env.Notices.Sweep()

		words, err := splitWords(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			code = exitcode.UserError
			continue
		}
		if len(words) == 0 {
			continue
		}

		var done bool
		code, done = c.exec(ctx, env, words, out, errOut)
		if done {
			return code
		}
	}
}

// exec runs one shell line. done reports that the shell should end.
func (c *ShellCmd) exec(ctx context.Context, env *Env, words []string, out, errOut io.Writer) (code int, done bool) {
	name, args := words[0], words[1:]
	switch name {
	case "exit", "quit":
		return exitcode.Success, true
	case "mode":
		fmt.Fprintln(out, env.Tasks.Mode())
		return exitcode.Success, false
	case "notices":
		for _, n := range env.Notices.Active() {
			line := fmt.Sprintf("%s  %s", n.ID, n.Title)
			if n.Message != "" {
				line += ": " + n.Message
			}
			if n.Retryable {
				line += " (retry)"
			}
			fmt.Fprintln(out, line)
		}
		return exitcode.Success, false
	case "retry":
		if len(args) != 1 {
			fmt.Fprintln(errOut, "error: usage: retry <notice>")
			return exitcode.UserError, false
		}
		if err := env.Notices.Retry(ctx, args[0]); err != nil {
			if errors.Is(err, notify.ErrNoRetry) {
				fmt.Fprintf(errOut, "error: notice %s has no retry\n", args[0])
				return exitcode.UserError, false
			}
			return exitcode.FromError(err), false
		}
		if !env.Config.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success, false
	case "dismiss":
		if len(args) != 1 {
			fmt.Fprintln(errOut, "error: usage: dismiss <notice>")
			return exitcode.UserError, false
		}
		env.Notices.Dismiss(args[0])
		return exitcode.Success, false
	case "help":
		fmt.Fprint(out, helpText)
		fmt.Fprintln(out)
		fmt.Fprint(out, shellHelp)
		return exitcode.Success, false
	}

	cmd, ok := c.registry.Find(name)
	if !ok || cmd.Name() == c.Name() {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError, false
	}

	fs := NewFlagSet(cmd)
	rest, code, ok := ParseFlags(cmd, fs, args, out, errOut)
	if !ok {
		return code, false
	}
	if cmd.NeedsAuth() {
		env.SyncMode()
	}
	return cmd.Run(ctx, env, rest, out, errOut), false
}

// splitWords splits a shell line on whitespace. Single and double quotes
// group words; a backslash escapes the next character outside single
// quotes.
func splitWords(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
