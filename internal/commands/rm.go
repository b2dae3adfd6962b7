package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasksession/internal/config"
	"tasksession/internal/exitcode"
	"tasksession/internal/session"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	pos int
}

// SetPos sets the --pos value (for testing).
func (c *RmCmd) SetPos(pos int) {
	c.pos = pos
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "tasksession rm [common flags] <id> | #<n> | --pos <n>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.pos, "pos", 0, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, c.pos)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	return runRm(ctx, cfg, sess, ref, out, errOut)
}

func runRm(ctx context.Context, cfg *config.Config, sess *session.Client, ref TaskRef, out, errOut io.Writer) int {
	id, err := resolveTaskRef(ctx, sess, ref)
	if err != nil {
		var oor errPosOutOfRange
		if errors.As(err, &oor) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if err := sess.DeleteTask(ctx, id); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
