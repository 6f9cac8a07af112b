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
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the fields given as flags
// change; each of them is validated like the add form.
type EditCmd struct {
	taskFlags
	fs *pflag.FlagSet
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskflow edit [common flags] [--title <title>] [-d <description>] [--due <YYYY-MM-DD>] [-p <priority>] [--status <status>] [-t <tags>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	c.register(fs, true)
}

var editFields = []string{"title", "description", "due", "priority", "status", "tags"}

func (c *EditCmd) changed() bool {
	if c.fs == nil {
		return false
	}
	for _, name := range editFields {
		if c.fs.Changed(name) {
			return true
		}
	}
	return false
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !c.changed() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, code, ok := resolveTask(ctx, env, args, errOut)
	if !ok {
		return code
	}

	v := form.New(env.T.T, form.TaskRules(env.Now))
	var err error
	if c.fs.Changed("title") {
		if fieldErr := v.ValidateField("title", c.title); fieldErr != nil {
			return reject(env, fieldErr, tasks.OpUpdate)
		}
		task.Title = strings.TrimSpace(c.title)
	}
	if c.fs.Changed("description") {
		if fieldErr := v.ValidateField("description", c.description); fieldErr != nil {
			return reject(env, fieldErr, tasks.OpUpdate)
		}
		task.Description = c.description
	}
	if c.fs.Changed("due") {
		if fieldErr := v.ValidateField("dueDate", c.due); fieldErr != nil {
			return reject(env, fieldErr, tasks.OpUpdate)
		}
		if task.DueDate, err = service.ParseDate(c.due); err != nil {
			return reject(env, err, tasks.OpUpdate)
		}
	}
	if c.fs.Changed("priority") {
		if task.Priority, err = service.ParsePriority(c.priority); err != nil {
			return reject(env, err, tasks.OpUpdate)
		}
	}
	if c.fs.Changed("status") {
		if task.Status, err = service.ParseStatus(c.status); err != nil {
			return reject(env, err, tasks.OpUpdate)
		}
	}
	if c.fs.Changed("tags") {
		tags, tagErr := v.NormalizeTags(form.SplitTags(c.tags))
		if tagErr != nil {
			return reject(env, tagErr, tasks.OpUpdate)
		}
		task.Tags = tags
	}

	if err := env.Tasks.Update(ctx, task); err != nil {
		return exitcode.FromError(err)
	}

	if env.Config.JSON {
		if err := output.JSON(out, task); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	}
	return exitcode.Success
}
