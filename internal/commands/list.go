package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksession/internal/config"
	"tasksession/internal/exitcode"
	"tasksession/internal/output"
	"tasksession/internal/session"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksession` (no args) and `tasksession list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasksession list [common flags]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks, err := sess.LoadTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	output.FormatTasks(out, tasks, cfg.Quiet)
	return exitcode.Success
}
