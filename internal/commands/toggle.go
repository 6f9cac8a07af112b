package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"next"} }
func (c *ToggleCmd) Synopsis() string  { return "Advance a task: TODO, IN_PROGRESS, COMPLETED, TODO" }
func (c *ToggleCmd) Usage() string     { return "taskflow toggle [common flags] <id>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code, ok := resolveTask(ctx, env, args, errOut)
	if !ok {
		return code
	}

	if err := env.Tasks.ToggleStatus(ctx, task.ID); err != nil {
		return exitcode.FromError(err)
	}

	if env.Config.JSON {
		updated, _ := env.Tasks.Get(task.ID)
		if err := output.JSON(out, updated); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	}
	return exitcode.Success
}
