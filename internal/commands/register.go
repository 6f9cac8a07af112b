package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskflow register [common flags] [--username <name>] [--email <email>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "user name; prompted for when omitted")
	fs.StringVarP(&c.email, "email", "e", "", "account email; prompted for when omitted")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	username, ok := ask(env, errOut, c.username, "fields.username")
	if !ok {
		return exitcode.UserError
	}
	email, ok := ask(env, errOut, c.email, "fields.email")
	if !ok {
		return exitcode.UserError
	}
	password, err := env.Prompt.Secret(env.T.T("fields.password", nil))
	if err != nil {
		fmt.Fprintf(errOut, "error: reading password: %v\n", err)
		return exitcode.UserError
	}

	if err := env.Auth.Register(ctx, username, email, password); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}

// ask returns value, or prompts for the field labelled by key when value
// is empty.
func ask(env *Env, errOut io.Writer, value, key string) (string, bool) {
	if value != "" {
		return value, true
	}
	label := env.T.T(key, nil)
	answer, err := env.Prompt.Line(label)
	if err != nil {
		fmt.Fprintf(errOut, "error: reading %s: %v\n", label, err)
		return "", false
	}
	return answer, true
}
