package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/tasks"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Count tasks by status" }
func (c *StatsCmd) Usage() string     { return "taskflow stats [common flags]" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if err := env.Tasks.Fetch(ctx); err != nil {
		return exitcode.FromError(err)
	}

	stats := tasks.ComputeStats(env.Tasks.Tasks(), env.Today())
	if env.Config.JSON {
		if err := output.JSON(out, stats); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	output.StatsSummary(out, stats, env.T.T)
	return exitcode.Success
}
