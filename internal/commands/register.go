package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksession/internal/config"
	"tasksession/internal/exitcode"
	"tasksession/internal/session"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
// Registering never logs in; --login chains a login afterwards.
type RegisterCmd struct {
	password string
	login    bool

	// In is read for the password when neither --password nor
	// TASKSESSION_PASSWORD is set. Defaults to os.Stdin.
	In io.Reader
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "tasksession register [common flags] [--password <p>] [--login] <username>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
	fs.BoolVar(&c.login, "login", false, "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	username, err := usernameArg(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	password, err := readPassword(c.password, c.In, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := sess.Register(ctx, username, password); err != nil {
		return reportError(errOut, err)
	}

	if c.login {
		return login(ctx, cfg, sess, username, password, out, errOut)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
