package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskflow rm [common flags] [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.yes, "yes", "y", false, "do not ask for confirmation")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code, ok := resolveTask(ctx, env, args, errOut)
	if !ok {
		return code
	}

	if !c.yes {
		confirmed, err := env.Prompt.Confirm(fmt.Sprintf("Delete task %s %q?", task.ID, task.Title))
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if !confirmed {
			fmt.Fprintln(errOut, "Canceled.")
			return exitcode.Success
		}
	}

	if err := env.Tasks.Remove(ctx, task.ID); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}
