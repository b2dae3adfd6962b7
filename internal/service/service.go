// Package service defines the backend-agnostic interface to the task server.
package service

import (
	"context"

	"tasksession/internal/credential"
)

// Backend defines the remote operations of the task server.
// The session layer talks to the server only through this interface;
// it never builds HTTP requests itself.
type Backend interface {
	// Register creates an account. It never establishes a session.
	Register(ctx context.Context, username, password string) error

	// Login exchanges username and password for a bearer credential.
	Login(ctx context.Context, username, password string) (credential.Credential, error)

	// ListTasks returns the credential owner's tasks in server order.
	ListTasks(ctx context.Context, cred credential.Credential) ([]Task, error)

	// CreateTask creates a task and returns it as stored by the server.
	CreateTask(ctx context.Context, cred credential.Credential, task NewTask) (Task, error)

	// DeleteTask deletes the task with the given id.
	DeleteTask(ctx context.Context, cred credential.Credential, id int64) error
}
