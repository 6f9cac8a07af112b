package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string     { return "taskflow login [common flags] [--email <email>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "account email; prompted for when omitted")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if user, ok := env.Auth.Bootstrap(); ok {
		if !env.Config.Quiet {
			fmt.Fprintf(out, "already logged in as %s\n", user.Username)
		}
		return exitcode.Success
	}

	email := c.email
	if email == "" {
		var err error
		if email, err = env.Prompt.Line(env.T.T("fields.email", nil)); err != nil {
			fmt.Fprintf(errOut, "error: reading email: %v\n", err)
			return exitcode.UserError
		}
	}
	password, err := env.Prompt.Secret(env.T.T("fields.password", nil))
	if err != nil {
		fmt.Fprintf(errOut, "error: reading password: %v\n", err)
		return exitcode.UserError
	}

	if _, err := env.Auth.Login(ctx, email, password); err != nil {
		return exitcode.FromError(err)
	}
	env.SyncMode()
	return exitcode.Success
}
