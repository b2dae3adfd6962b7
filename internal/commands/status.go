package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"tasksession/internal/config"
	"tasksession/internal/credential"
	"tasksession/internal/exitcode"
	"tasksession/internal/session"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show session state" }
func (c *StatusCmd) Usage() string     { return "tasksession status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Client, args []string, out, errOut io.Writer) int {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	fmt.Fprintf(out, "state:   %s\n", sess.State())
	fmt.Fprintf(out, "server:  %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "store:   %s\n", storeLocation(cfg))

	cred, err := sess.Store().Get()
	if errors.Is(err, credential.ErrAbsent) {
		return exitcode.Success
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	claims, err := credential.Inspect(cred)
	if err != nil {
		fmt.Fprintln(out, "token:   opaque")
		return exitcode.Success
	}
	if claims.Subject != "" {
		fmt.Fprintf(out, "user:    %s\n", claims.Subject)
	}
	if !claims.ExpiresAt.IsZero() {
		suffix := ""
		if claims.Expired(now()) {
			suffix = " (expired)"
		}
		fmt.Fprintf(out, "expires: %s%s\n", claims.ExpiresAt.UTC().Format(time.RFC3339), suffix)
	}
	return exitcode.Success
}

func storeLocation(cfg *config.Config) string {
	if cfg.CredentialStore == credential.BackendSQLite {
		return fmt.Sprintf("%s (%s)", credential.BackendSQLite, cfg.CredentialDBPath())
	}
	return fmt.Sprintf("%s (%s)", credential.BackendFile, cfg.CredentialPath())
}
