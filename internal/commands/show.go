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
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	yaml bool
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"get"} }
func (c *ShowCmd) Synopsis() string  { return "Show one task" }
func (c *ShowCmd) Usage() string     { return "taskflow show [common flags] [--yaml] <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.yaml, "yaml", false, "print the task as YAML")
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code, ok := resolveTask(ctx, env, args, errOut)
	if !ok {
		return code
	}

	var err error
	switch {
	case env.Config.JSON:
		err = output.JSON(out, task)
	case c.yaml:
		err = output.YAML(out, task)
	default:
		description := task.Description
		if env.TTY {
			rendered, mdErr := output.Markdown(description, output.DefaultWrap, env.Color)
			if mdErr != nil {
				env.Log.V(1).Info("markdown rendering failed", "error", mdErr.Error())
			} else {
				description = rendered
			}
		}
		output.TaskDetail(out, task, description, env.T.T)
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
