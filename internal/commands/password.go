package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskflow/internal/exitcode"
)

func init() {
	Register(&ForgotPasswordCmd{})
	Register(&ResetPasswordCmd{})
}

// ForgotPasswordCmd implements the forgot-password command.
type ForgotPasswordCmd struct {
	email string
}

func (c *ForgotPasswordCmd) Name() string      { return "forgot-password" }
func (c *ForgotPasswordCmd) Aliases() []string { return nil }
func (c *ForgotPasswordCmd) Synopsis() string  { return "Email a password reset link" }
func (c *ForgotPasswordCmd) Usage() string {
	return "taskflow forgot-password [common flags] [--email <email>]"
}
func (c *ForgotPasswordCmd) NeedsAuth() bool { return false }

func (c *ForgotPasswordCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "account email; prompted for when omitted")
}

func (c *ForgotPasswordCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	email, ok := ask(env, errOut, c.email, "fields.email")
	if !ok {
		return exitcode.UserError
	}
	if err := env.Auth.ForgotPassword(ctx, email); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}

// ResetPasswordCmd implements the reset-password command.
type ResetPasswordCmd struct {
	token string
}

func (c *ResetPasswordCmd) Name() string      { return "reset-password" }
func (c *ResetPasswordCmd) Aliases() []string { return nil }
func (c *ResetPasswordCmd) Synopsis() string  { return "Set a new password with a reset token" }
func (c *ResetPasswordCmd) Usage() string {
	return "taskflow reset-password [common flags] [--token <token>]"
}
func (c *ResetPasswordCmd) NeedsAuth() bool { return false }

func (c *ResetPasswordCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "token from the reset email; prompted for when omitted")
}

func (c *ResetPasswordCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	token, ok := ask(env, errOut, c.token, "fields.token")
	if !ok {
		return exitcode.UserError
	}
	password, err := env.Prompt.Secret(env.T.T("fields.password", nil))
	if err != nil {
		fmt.Fprintf(errOut, "error: reading password: %v\n", err)
		return exitcode.UserError
	}
	if err := env.Auth.ResetPassword(ctx, token, password); err != nil {
		return exitcode.FromError(err)
	}
	return exitcode.Success
}
