package commands

import (
	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

// taskFlags are the task fields settable from the command line.
type taskFlags struct {
	title       string
	description string
	due         string
	priority    string
	status      string
	tags        string
}

func (f *taskFlags) register(fs *pflag.FlagSet, withTitle bool) {
	if withTitle {
		fs.StringVar(&f.title, "title", "", "new title")
	}
	fs.StringVarP(&f.description, "description", "d", "", "description, Markdown allowed")
	fs.StringVar(&f.due, "due", "", "due date as YYYY-MM-DD, after today")
	fs.StringVarP(&f.priority, "priority", "p", "", "LOW, MEDIUM or HIGH")
	fs.StringVar(&f.status, "status", "", "TODO, IN_PROGRESS or COMPLETED")
	fs.StringVarP(&f.tags, "tags", "t", "", "comma-separated tags")
}

// reject reports invalid input through the notifier.
func reject(env *Env, err error, op string) int {
	env.Notices.Error(err, op, nil)
	return exitcode.UserError
}
