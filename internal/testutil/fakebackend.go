// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tasksession/internal/credential"
	"tasksession/internal/service"
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// Tokens are opaque strings minted per login; Expire invalidates them all.
type FakeBackend struct {
	mu     sync.Mutex
	users  map[string]string         // username -> password
	tokens map[string]string         // token -> username
	tasks  map[string][]service.Task // username -> tasks
	nextID int64
	logins int

	// Now stamps created_at on new tasks.
	Now func() time.Time

	// Error injection for testing
	RegisterErr   error
	LoginErr      error
	ListTasksErr  error
	CreateTaskErr error
	DeleteTaskErr error

	// BeforeReturn runs after a data operation's outcome is decided and the
	// lock is released. Tests use it to interleave concurrent operations.
	BeforeReturn func(op string)

	calls map[string]int
	creds []credential.Credential
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:  make(map[string]string),
		tokens: make(map[string]string),
		tasks:  make(map[string][]service.Task),
		calls:  make(map[string]int),
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

// AddUser registers a user directly.
func (f *FakeBackend) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// IssueToken mints a valid token for an existing user without a Login call.
func (f *FakeBackend) IssueToken(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(username)
}

// AddTask stores a task for username and returns it.
func (f *FakeBackend) AddTask(username, title string, description *string, score float64) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(username, title, description, score)
}

// Expire invalidates every issued token, as a server restart with a new key would.
func (f *FakeBackend) Expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// Calls returns how many times op was invoked ("register", "login",
// "list", "create", "delete").
func (f *FakeBackend) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of backend invocations of any kind.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Credentials returns the credentials presented to data operations, in order.
func (f *FakeBackend) Credentials() []credential.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]credential.Credential(nil), f.creds...)
}

// ServerTasks returns the server-side tasks of username.
func (f *FakeBackend) ServerTasks(username string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks[username]...)
}

// Register implements service.Backend.
func (f *FakeBackend) Register(ctx context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["register"]++

	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if _, exists := f.users[username]; exists {
		return &service.Error{Kind: service.KindAuth, Op: "register", Status: 400, Message: "Username already registered"}
	}
	f.users[username] = password
	return nil
}

// Login implements service.Backend.
func (f *FakeBackend) Login(ctx context.Context, username, password string) (credential.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["login"]++

	if f.LoginErr != nil {
		return credential.Credential{}, f.LoginErr
	}
	if pw, ok := f.users[username]; !ok || pw != password {
		return credential.Credential{}, &service.Error{Kind: service.KindAuth, Op: "login", Status: 401, Message: "Incorrect username or password"}
	}
	return credential.New(f.issueLocked(username)), nil
}

// ListTasks implements service.Backend.
func (f *FakeBackend) ListTasks(ctx context.Context, cred credential.Credential) ([]service.Task, error) {
	f.mu.Lock()
	user, err := f.authLocked("list", cred)
	if err == nil {
		err = f.ListTasksErr
	}
	var result []service.Task
	if err == nil {
		result = append([]service.Task{}, f.tasks[user]...)
	}
	f.mu.Unlock()

	f.hook("list")
	return result, err
}

// CreateTask implements service.Backend.
func (f *FakeBackend) CreateTask(ctx context.Context, cred credential.Credential, task service.NewTask) (service.Task, error) {
	f.mu.Lock()
	user, err := f.authLocked("create", cred)
	if err == nil {
		err = f.CreateTaskErr
	}
	var created service.Task
	if err == nil {
		desc := ""
		if task.Description != nil {
			desc = *task.Description
		}
		created = f.addLocked(user, task.Title, task.Description, ScorePriority(task.Title, desc))
	}
	f.mu.Unlock()

	f.hook("create")
	return created, err
}

// DeleteTask implements service.Backend.
func (f *FakeBackend) DeleteTask(ctx context.Context, cred credential.Credential, id int64) error {
	f.mu.Lock()
	user, err := f.authLocked("delete", cred)
	if err == nil {
		err = f.DeleteTaskErr
	}
	if err == nil {
		err = &service.Error{Kind: service.KindOperation, Op: "delete task", Status: 404, Message: "Task not found"}
		tasks := f.tasks[user]
		for i, t := range tasks {
			if t.ID == id {
				f.tasks[user] = append(tasks[:i:i], tasks[i+1:]...)
				err = nil
				break
			}
		}
	}
	f.mu.Unlock()

	f.hook("delete")
	return err
}

func (f *FakeBackend) hook(op string) {
	if f.BeforeReturn != nil {
		f.BeforeReturn(op)
	}
}

func (f *FakeBackend) authLocked(op string, cred credential.Credential) (string, error) {
	f.calls[op]++
	f.creds = append(f.creds, cred)
	user, ok := f.tokens[cred.Value]
	if !ok {
		return "", &service.Error{Kind: service.KindUnauthorized, Op: op, Status: 401, Message: "Could not validate credentials"}
	}
	return user, nil
}

func (f *FakeBackend) issueLocked(username string) string {
	f.logins++
	token := fmt.Sprintf("token-%s-%d", username, f.logins)
	f.tokens[token] = username
	return token
}

func (f *FakeBackend) addLocked(username, title string, description *string, score float64) service.Task {
	f.nextID++
	t := service.Task{
		ID:            f.nextID,
		Title:         title,
		Description:   description,
		PriorityScore: score,
		CreatedAt:     service.Timestamp{Time: f.Now()},
	}
	f.tasks[username] = append(f.tasks[username], t)
	return t
}

// ScorePriority is the server's keyword heuristic used when no model is
// available. It starts at 0.5 and clamps to [0, 1].
func ScorePriority(title, description string) float64 {
	text := strings.ToLower(title) + "\n" + strings.ToLower(description)

	score := 0.5
	if containsAny(text, "urgent", "asap", "critical", "important", "deadline", "due") {
		score += 0.3
	}
	if containsAny(text, "high", "priority", "soon", "quick") {
		score += 0.2
	}
	if containsAny(text, "low", "later", "optional", "someday") {
		score -= 0.2
	}
	score += min(float64(len(title))/50, 0.1)

	return max(0.0, min(1.0, score))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
