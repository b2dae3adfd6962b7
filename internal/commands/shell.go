package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasksession/internal/config"
	"tasksession/internal/exitcode"
	"tasksession/internal/output"
	"tasksession/internal/session"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements an interactive loop over one long-lived session.
// Failures are reported and the loop goes on; an Unauthorized failure
// leaves the shell logged out until the next login.
type ShellCmd struct {
	// In is the command source. Defaults to os.Stdin.
	In io.Reader
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Interactive session" }
func (c *ShellCmd) Usage() string     { return "tasksession shell [common flags]" }
func (c *ShellCmd) NeedsAuth() bool   { return false }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	in := c.In
	if in == nil {
		in = os.Stdin
	}

	scanner := bufio.NewScanner(in)
	for {
		if !cfg.Quiet {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			fmt.Fprintln(errOut, "error: cancelled")
			return exitcode.UserError
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, rest, _ := strings.Cut(line, " ")
		if name == "quit" || name == "exit" {
			return exitcode.Success
		}
		shellLine(ctx, cfg, sess, name, strings.TrimSpace(rest), out, errOut)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out)
	}
	return exitcode.Success
}

// shellLine runs one shell command and returns its exit code.
func shellLine(ctx context.Context, cfg *config.Config, sess *session.Client, name, rest string, out, errOut io.Writer) int {
	switch name {
	case "list", "ls":
		tasks, err := sess.LoadTasks(ctx)
		if err != nil {
			return reportError(errOut, err)
		}
		output.FormatTasks(out, tasks, cfg.Quiet)

	case "tasks":
		// Whatever the last operation left behind, without a fetch.
		output.FormatTasks(out, sess.Snapshot().Tasks, cfg.Quiet)

	case "add", "create":
		title, description, _ := strings.Cut(rest, " -- ")
		return runAdd(ctx, cfg, sess, description, []string{title}, out, errOut)

	case "rm", "delete":
		ref, err := ParseTaskRef(strings.Fields(rest), 0)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return runRm(ctx, cfg, sess, ref, out, errOut)

	case "login":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			fmt.Fprintln(errOut, "error: usage: login <username> <password>")
			return exitcode.UserError
		}
		return login(ctx, cfg, sess, fields[0], fields[1], out, errOut)

	case "logout":
		if err := sess.Logout(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}

	case "status":
		snap := sess.Snapshot()
		fmt.Fprintf(out, "%s, %d tasks loaded\n", sess.State(), len(snap.Tasks))
		if snap.Err != nil {
			fmt.Fprintf(out, "last error: %v\n", snap.Err)
		}

	case "help":
		fmt.Fprint(out, shellHelp)

	default:
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return exitcode.Success
}

const shellHelp = `Commands:
  list                        Fetch and print tasks
  tasks                       Print tasks without fetching
  add <title> [-- <desc>]     Create a task
  rm <id> | #<n>              Delete a task
  login <username> <password>
  logout
  status
  quit
`
