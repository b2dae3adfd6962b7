package commands

import (
	"errors"
	"fmt"
	"io"

	"tasksession/internal/exitcode"
	"tasksession/internal/service"
	"tasksession/internal/session"
)

// reportError prints err as an "error: ..." line and returns the exit code for it.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, session.ErrEmptyTitle):
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	case errors.Is(err, session.ErrMissingCredentials):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var serr *service.Error
	if !errors.As(err, &serr) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	code := exitcode.BackendError
	switch serr.Kind {
	case service.KindConnectivity:
		fmt.Fprintf(errOut, "error: %v\n", serr)
		code = exitcode.ConnectivityError
	case service.KindAuth:
		fmt.Fprintf(errOut, "error: %v\n", serr)
		code = exitcode.AuthError
	case service.KindUnauthorized:
		if serr.Status == 0 {
			fmt.Fprintln(errOut, "error: not logged in (run: tasksession login)")
		} else {
			fmt.Fprintln(errOut, "error: session expired, logged out (run: tasksession login)")
		}
		code = exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", serr)
	}

	// A failed credential clear is joined onto the Unauthorized error.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if e != error(serr) {
				fmt.Fprintf(errOut, "error: %v\n", e)
			}
		}
	}
	return code
}
