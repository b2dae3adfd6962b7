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
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored credential" }
func (c *LogoutCmd) Usage() string     { return "tasksession logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	// Clear even when nothing readable is stored; an unreadable credential
	// file still has to go.
	wasAuthenticated := sess.IsAuthenticated()
	if err := sess.Logout(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	if wasAuthenticated {
		fmt.Fprintln(out, "ok")
	} else {
		fmt.Fprintln(out, "not logged in")
	}
	return exitcode.Success
}
