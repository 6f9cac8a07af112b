package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

// NewFlagSet returns a flag set holding cmd's flags. Parse errors are
// returned, never printed.
func NewFlagSet(cmd Command) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	cmd.RegisterFlags(fs)
	return fs
}

// ParseFlags parses args into fs. It returns the positional arguments and
// ok. When ok is false the caller should exit with code; -h/--help prints
// the usage and exits successfully.
func ParseFlags(cmd Command, fs *pflag.FlagSet, args []string, out, errOut io.Writer) (rest []string, code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			PrintUsage(out, cmd, fs)
			return nil, exitcode.Success, false
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.UserError, false
	}
	return fs.Args(), exitcode.Success, true
}

// PrintUsage writes the usage line and flag defaults of cmd.
func PrintUsage(w io.Writer, cmd Command, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
	if fs.HasFlags() {
		fmt.Fprintf(w, "\nFlags:\n%s", fs.FlagUsages())
	}
}
