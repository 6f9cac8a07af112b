package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
	"taskflow/internal/form"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskflow add [common flags] --due <YYYY-MM-DD> [-d <description>] [-p <priority>] [--status <status>] [-t <tags>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.register(fs, false)
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))

	v := form.New(env.T.T, form.TaskRules(env.Now))
	values := form.Values{"title": title, "description": c.description, "dueDate": c.due}
	if err := v.ValidateForm(values).First(); err != nil {
		return reject(env, err, tasks.OpCreate)
	}
	tags, tagErr := v.NormalizeTags(form.SplitTags(c.tags))
	if tagErr != nil {
		return reject(env, tagErr, tasks.OpCreate)
	}

	draft := service.Draft{Title: title, Description: c.description, Tags: tags}
	due, err := service.ParseDate(c.due)
	if err != nil {
		return reject(env, err, tasks.OpCreate)
	}
	draft.DueDate = due
	if c.priority != "" {
		if draft.Priority, err = service.ParsePriority(c.priority); err != nil {
			return reject(env, err, tasks.OpCreate)
		}
	}
	if c.status != "" {
		if draft.Status, err = service.ParseStatus(c.status); err != nil {
			return reject(env, err, tasks.OpCreate)
		}
	}

	task, err := env.Tasks.Add(ctx, draft)
	if err != nil {
		return exitcode.FromError(err)
	}

	if env.Config.JSON {
		if err := output.JSON(out, task); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	if !env.Config.Quiet {
		fmt.Fprintln(out, task.ID)
	}
	return exitcode.Success
}
