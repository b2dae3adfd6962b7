package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasksession/internal/config"
	"tasksession/internal/exitcode"
	"tasksession/internal/session"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "TASKSESSION_PASSWORD"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string

	// In is read for the password when neither --password nor
	// TASKSESSION_PASSWORD is set. Defaults to os.Stdin.
	In io.Reader
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to the task server" }
func (c *LoginCmd) Usage() string     { return "tasksession login [common flags] [--password <p>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	username, err := usernameArg(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if sess.IsAuthenticated() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	password, err := readPassword(c.password, c.In, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	return login(ctx, cfg, sess, username, password, out, errOut)
}

// login stores a fresh credential for username and prints "ok".
func login(ctx context.Context, cfg *config.Config, sess *session.Client, username, password string, out, errOut io.Writer) int {
	if _, err := sess.Authenticate(ctx, username, password); err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// usernameArg returns the single positional username.
func usernameArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", errors.New("username required")
	case 1:
		if strings.TrimSpace(args[0]) == "" {
			return "", errors.New("username required")
		}
		return args[0], nil
	default:
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
}

// readPassword returns flagValue, then $TASKSESSION_PASSWORD, then one line
// read from in after prompting on prompt.
func readPassword(flagValue string, in io.Reader, prompt io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprint(prompt, "password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password required")
	}
	return line, nil
}
