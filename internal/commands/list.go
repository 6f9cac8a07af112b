package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	search   string
	status   string
	priority string
	sort     string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskflow list [common flags] [--search <text>] [--status <status>] [--priority <priority>] [--sort dueDate|priority|status]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.search, "search", "s", "", "only tasks whose title or description contains text")
	fs.StringVar(&c.status, "status", "", "only tasks with this status (TODO, IN_PROGRESS, COMPLETED or all)")
	fs.StringVarP(&c.priority, "priority", "p", "", "only tasks with this priority (LOW, MEDIUM, HIGH or all)")
	fs.StringVar(&c.sort, "sort", "", "order by dueDate, priority or status")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	q := tasks.Query{Search: c.search}
	if !isAll(c.status) {
		status, err := service.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		q.Status = status
	}
	if !isAll(c.priority) {
		priority, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		q.Priority = priority
	}
	var sortKey tasks.SortKey
	if c.sort != "" {
		key, err := tasks.ParseSortKey(c.sort)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		sortKey = key
	}

	if err := env.Tasks.Fetch(ctx); err != nil {
		return exitcode.FromError(err)
	}

	list := tasks.Filter(env.Tasks.Tasks(), q)
	if sortKey != "" {
		list = tasks.Sort(list, sortKey)
	}

	if env.Config.JSON {
		if list == nil {
			list = []service.Task{}
		}
		if err := output.JSON(out, list); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}

	if len(list) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, env.T.T("tasks.noTasks", nil))
		}
		return exitcode.Success
	}
	output.TaskTable(out, list, env.Today())
	return exitcode.Success
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all")
}
