// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, empty title, unknown task).
	UserError = 1

	// AuthError indicates a rejected login or registration, or a missing or
	// expired session.
	AuthError = 2

	// BackendError indicates the server refused an operation.
	BackendError = 3

	// ConnectivityError indicates the server could not be reached.
	ConnectivityError = 4
)
