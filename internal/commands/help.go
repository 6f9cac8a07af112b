package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                          List tasks
  taskflow list [common flags] [-s <text>] [--status <s>] [-p <p>] [--sort <key>]
  taskflow show [common flags] [--yaml] <id>
  taskflow add [common flags] --due <date> [-d <text>] [-p <p>] [--status <s>] [-t <tags>] <title...>
  taskflow edit [common flags] [--title <t>] [-d <text>] [--due <date>] [-p <p>] [--status <s>] [-t <tags>] <id>
  taskflow toggle [common flags] <id>
  taskflow rm [common flags] [--yes] <id>
  taskflow stats [common flags]
  taskflow login [common flags] [--email <email>]
  taskflow logout [common flags]
  taskflow register [common flags] [--username <name>] [--email <email>]
  taskflow forgot-password [common flags] [--email <email>]
  taskflow reset-password [common flags] [--token <token>]
  taskflow shell [common flags]
  taskflow help
  taskflow version

Statuses:   TODO, IN_PROGRESS, COMPLETED
Priorities: LOW, MEDIUM, HIGH
Sort keys:  dueDate, priority, status

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --demo           Use the local demo store instead of the server
  --lang <code>    Message language (en, de, ar)
  --json           Print results as JSON
`
