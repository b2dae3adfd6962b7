// Package session is the authenticated data-synchronization layer between the
// task server and whatever presents tasks to the user.
//
// A Client owns the in-memory task collection. The collection always equals
// what the last successful fetch, create or delete produced: fetch replaces
// it, create appends, delete filters. Failed operations never touch it.
//
// Any data operation that comes back Unauthorized clears the credential
// store, which moves the session to LoggedOut until the next login.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"tasksession/internal/credential"
	"tasksession/internal/service"
)

// State is the session-level state.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged in"
	}
	return "logged out"
}

var (
	// ErrEmptyTitle is returned by CreateTask when the trimmed title is empty.
	// Nothing is submitted and no state changes; callers treat it as "no-op".
	ErrEmptyTitle = errors.New("title required")

	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("username and password required")
)

// Client executes authenticated operations and keeps the task collection.
type Client struct {
	backend service.Backend
	store   credential.Store
	logger  *slog.Logger

	mu      sync.Mutex
	tasks   []service.Task
	lastErr error

	inflight atomic.Int32
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. The initial state is LoggedIn if store already holds
// a credential.
func New(backend service.Backend, store credential.Store, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the credential store backing the session.
func (c *Client) Store() credential.Store { return c.store }

// IsAuthenticated reports whether a credential is stored.
func (c *Client) IsAuthenticated() bool { return c.store.IsAuthenticated() }

// State returns LoggedIn if a credential is stored, otherwise LoggedOut.
func (c *Client) State() State {
	if c.IsAuthenticated() {
		return LoggedIn
	}
	return LoggedOut
}

// Close releases the credential store if it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Register creates an account. It never logs in; the register-then-login
// flow is up to the caller.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	done := c.begin()
	defer done()

	if err := c.backend.Register(ctx, username, password); err != nil {
		return c.fail(ctx, "register", err)
	}
	c.logger.DebugContext(ctx, "registered", "username", username)
	return nil
}

// Login exchanges username and password for a credential. The credential is
// returned, not stored; pass it to the store (or use Authenticate) to log in.
func (c *Client) Login(ctx context.Context, username, password string) (credential.Credential, error) {
	if username == "" || password == "" {
		return credential.Credential{}, ErrMissingCredentials
	}

	done := c.begin()
	defer done()

	cred, err := c.backend.Login(ctx, username, password)
	if err != nil {
		return credential.Credential{}, c.fail(ctx, "login", err)
	}
	return cred, nil
}

// Authenticate logs in and stores the resulting credential.
func (c *Client) Authenticate(ctx context.Context, username, password string) (credential.Credential, error) {
	cred, err := c.Login(ctx, username, password)
	if err != nil {
		return credential.Credential{}, err
	}
	if err := c.store.Set(cred.Value); err != nil {
		return credential.Credential{}, c.fail(ctx, "login", fmt.Errorf("failed to store credential: %w", err))
	}
	c.logger.DebugContext(ctx, "logged in", "username", username)
	return cred, nil
}

// LoadTasks fetches the task list and replaces the collection with it.
func (c *Client) LoadTasks(ctx context.Context) ([]service.Task, error) {
	cred, err := c.currentCredential(ctx, "fetch tasks")
	if err != nil {
		return nil, err
	}

	done := c.begin()
	defer done()

	tasks, err := c.backend.ListTasks(ctx, cred)
	if err != nil {
		return nil, c.fail(ctx, "fetch tasks", err)
	}

	c.mu.Lock()
	c.tasks = append([]service.Task(nil), tasks...)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "tasks loaded", "count", len(tasks))
	return append([]service.Task(nil), tasks...), nil
}

// CreateTask submits a task and appends the server's copy to the collection.
// title and description are trimmed; an empty description is sent as null.
// An empty title returns ErrEmptyTitle without contacting the server.
func (c *Client) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, ErrEmptyTitle
	}
	in := service.NewTask{Title: title}
	if d := strings.TrimSpace(description); d != "" {
		in.Description = &d
	}

	cred, err := c.currentCredential(ctx, "create task")
	if err != nil {
		return service.Task{}, err
	}

	done := c.begin()
	defer done()

	created, err := c.backend.CreateTask(ctx, cred, in)
	if err != nil {
		return service.Task{}, c.fail(ctx, "create task", err)
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, created)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "task created", "id", created.ID)
	return created, nil
}

// DeleteTask deletes a task on the server and removes it from the collection.
// The collection is left alone if the server refuses.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	cred, err := c.currentCredential(ctx, "delete task")
	if err != nil {
		return err
	}

	done := c.begin()
	defer done()

	if err := c.backend.DeleteTask(ctx, cred, id); err != nil {
		return c.fail(ctx, "delete task", err)
	}

	c.mu.Lock()
	kept := make([]service.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "task deleted", "id", id)
	return nil
}

// Logout clears the credential and the collection, whatever the prior state.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.tasks = nil
	c.lastErr = nil
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// Tasks returns a copy of the collection.
func (c *Client) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Task(nil), c.tasks...)
}

// currentCredential returns the stored credential, or an Unauthorized error without
// contacting the server when none is stored.
func (c *Client) currentCredential(ctx context.Context, op string) (credential.Credential, error) {
	cred, err := c.store.Get()
	if errors.Is(err, credential.ErrAbsent) {
		return credential.Credential{}, c.fail(ctx, op, service.Unauthorized(op))
	}
	if err != nil {
		return credential.Credential{}, c.fail(ctx, op, fmt.Errorf("failed to read credential: %w", err))
	}
	return cred, nil
}

// begin marks an operation in flight and clears the last error.
func (c *Client) begin() func() {
	c.inflight.Add(1)
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	return func() { c.inflight.Add(-1) }
}

// fail records err and, for Unauthorized, clears the credential store.
// A failure to clear is joined into the returned error.
func (c *Client) fail(ctx context.Context, op string, err error) error {
	if service.IsUnauthorized(err) {
		c.logger.InfoContext(ctx, "credential rejected, logging out", "op", op)
		if cerr := c.store.Clear(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to clear credential: %w", cerr))
		}
	}

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}
