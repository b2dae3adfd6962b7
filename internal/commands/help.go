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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasksession help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) Standalone()       {}

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasksession                                         List tasks
  tasksession list [common flags]
  tasksession add [common flags] [--description <text>] <title...>
  tasksession create [common flags] [--description <text>] <title...>
  tasksession rm [common flags] <id> | #<n> | --pos <n>
  tasksession register [common flags] [--password <p>] [--login] <username>
  tasksession login [common flags] [--password <p>] <username>
  tasksession logout [common flags]
  tasksession status [common flags]
  tasksession shell [common flags]
  tasksession help
  tasksession version

Common flags:
  --config <dir>   Override config directory
  --server <url>   Task server API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKSESSION_SERVER_URL, TASKSESSION_CREDENTIAL_STORE,
  TASKSESSION_REQUEST_TIMEOUT, TASKSESSION_LOG_FORMAT, TASKSESSION_PASSWORD
`
