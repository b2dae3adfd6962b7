package session_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksession/internal/backend/taskapi"
	"tasksession/internal/credential"
	"tasksession/internal/logging"
	"tasksession/internal/service"
	"tasksession/internal/session"
	"tasksession/internal/testutil"
)

// loggedIn returns a client whose store already holds a valid token for alice.
func loggedIn(t *testing.T) (*session.Client, *testutil.FakeBackend, *credential.MemoryStore) {
	t.Helper()
	backend := testutil.NewFakeBackend()
	backend.AddUser("alice", "pw")
	store := credential.NewMemoryStore()
	require.NoError(t, store.Set(backend.IssueToken("alice")))
	return session.New(backend, store), backend, store
}

func ids(tasks []service.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestInitialState(t *testing.T) {
	store := credential.NewMemoryStore()
	c := session.New(testutil.NewFakeBackend(), store)
	assert.Equal(t, session.LoggedOut, c.State())

	require.NoError(t, store.Set("tok"))
	c = session.New(testutil.NewFakeBackend(), store)
	assert.Equal(t, session.LoggedIn, c.State())
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	backend := testutil.NewFakeBackend()
	c := session.New(backend, credential.NewMemoryStore())

	require.NoError(t, c.Register(context.Background(), "alice", "pw"))
	assert.False(t, c.IsAuthenticated())
	assert.Equal(t, session.LoggedOut, c.State())
}

func TestRegister_EmptyInputsSkipNetwork(t *testing.T) {
	backend := testutil.NewFakeBackend()
	c := session.New(backend, credential.NewMemoryStore())

	err := c.Register(context.Background(), "", "pw")
	assert.ErrorIs(t, err, session.ErrMissingCredentials)
	_, err = c.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, session.ErrMissingCredentials)
	assert.Zero(t, backend.TotalCalls())
}

func TestRegister_RejectionSurfacesDetail(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddUser("alice", "pw")
	c := session.New(backend, credential.NewMemoryStore())

	err := c.Register(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.Equal(t, "Username already registered", err.Error())
	assert.Equal(t, err, c.Snapshot().Err)
}

func TestLogin_ReturnsCredentialWithoutStoring(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddUser("alice", "pw")
	store := credential.NewMemoryStore()
	c := session.New(backend, store)

	cred, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Value)
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Set(cred.Value))
	assert.True(t, c.IsAuthenticated())
}

func TestRegisterLoginLogoutRoundTrip(t *testing.T) {
	backend := testutil.NewFakeBackend()
	store := credential.NewMemoryStore()
	c := session.New(backend, store)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "alice", "pw"))
	cred, err := c.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.True(t, c.IsAuthenticated())

	stored, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, cred.Value, stored.Value)

	_, err = c.CreateTask(ctx, "Buy milk", "")
	require.NoError(t, err)

	require.NoError(t, c.Logout())
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, c.Tasks())
}

func TestLogin_Failure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddUser("alice", "pw")
	c := session.New(backend, credential.NewMemoryStore())

	_, err := c.Authenticate(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.False(t, c.IsAuthenticated())
}

func TestLogout_Idempotent(t *testing.T) {
	c := session.New(testutil.NewFakeBackend(), credential.NewMemoryStore())
	require.NoError(t, c.Logout())
	require.NoError(t, c.Logout())
	assert.Equal(t, session.LoggedOut, c.State())
}

func TestLoadTasks_ReplacesCollection(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()

	a := backend.AddTask("alice", "a", nil, 0.2)
	tasks, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids(tasks))

	b := backend.AddTask("alice", "b", nil, 0.8)
	_, err = c.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids(c.Tasks()))
}

func TestLoadTasks_NotAuthenticatedSkipsNetwork(t *testing.T) {
	backend := testutil.NewFakeBackend()
	c := session.New(backend, credential.NewMemoryStore())

	_, err := c.LoadTasks(context.Background())
	require.Error(t, err)
	assert.True(t, service.IsUnauthorized(err))
	assert.Zero(t, backend.TotalCalls())
}

func TestLoadTasks_FailureKeepsCollection(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()
	backend.AddTask("alice", "a", nil, 0.2)
	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)

	backend.ListTasksErr = &service.Error{Kind: service.KindOperation, Status: 500, Message: "boom"}
	_, err = c.LoadTasks(ctx)
	require.Error(t, err)
	assert.Len(t, c.Tasks(), 1)
	assert.True(t, c.IsAuthenticated(), "only Unauthorized logs out")
}

func TestCreateTask_EmptyTitleIsNoop(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()
	backend.AddTask("alice", "a", nil, 0.2)
	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	before := backend.TotalCalls()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := c.CreateTask(ctx, title, "desc")
		assert.ErrorIs(t, err, session.ErrEmptyTitle)
	}
	assert.Equal(t, before, backend.TotalCalls())
	assert.Len(t, c.Tasks(), 1)
	assert.NoError(t, c.Snapshot().Err)
}

func TestCreateTask_AppendsPreservingOrder(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()
	a := backend.AddTask("alice", "a", nil, 0.2)
	b := backend.AddTask("alice", "b", nil, 0.2)
	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	before := c.Tasks()

	created, err := c.CreateTask(ctx, "Buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Nil(t, created.Description)

	after := c.Tasks()
	require.Len(t, after, 3)
	assert.Equal(t, before, after[:2])
	assert.Equal(t, []int64{a.ID, b.ID, created.ID}, ids(after))
}

func TestCreateTask_TrimsInput(t *testing.T) {
	c, backend, _ := loggedIn(t)

	created, err := c.CreateTask(context.Background(), "  Write report  ", "  by Friday ")
	require.NoError(t, err)
	assert.Equal(t, "Write report", created.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, "by Friday", *created.Description)

	created, err = c.CreateTask(context.Background(), "Other", "   ")
	require.NoError(t, err)
	assert.Nil(t, created.Description)
	assert.Nil(t, backend.ServerTasks("alice")[1].Description)
}

func TestDeleteTask_RemovesOnlyMatchingID(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()
	a := backend.AddTask("alice", "a", nil, 0.2)
	b := backend.AddTask("alice", "b", nil, 0.5)
	d := backend.AddTask("alice", "d", nil, 0.9)
	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)

	require.NoError(t, c.DeleteTask(ctx, b.ID))
	assert.Equal(t, []int64{a.ID, d.ID}, ids(c.Tasks()))
}

func TestDeleteTask_FailureLeavesCollection(t *testing.T) {
	c, backend, _ := loggedIn(t)
	ctx := context.Background()
	backend.AddTask("alice", "a", nil, 0.2)
	_, err := c.LoadTasks(ctx)
	require.NoError(t, err)

	err = c.DeleteTask(ctx, 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrOperation)
	assert.Len(t, c.Tasks(), 1)
}

func TestUnauthorized_LogsOutFromEveryOperation(t *testing.T) {
	ops := map[string]func(*session.Client) error{
		"load": func(c *session.Client) error {
			_, err := c.LoadTasks(context.Background())
			return err
		},
		"create": func(c *session.Client) error {
			_, err := c.CreateTask(context.Background(), "x", "")
			return err
		},
		"delete": func(c *session.Client) error {
			return c.DeleteTask(context.Background(), 1)
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			c, backend, store := loggedIn(t)
			backend.AddTask("alice", "a", nil, 0.2)
			backend.Expire()

			err := op(c)
			require.Error(t, err)
			assert.True(t, service.IsUnauthorized(err))
			assert.False(t, store.IsAuthenticated())
			assert.Equal(t, session.LoggedOut, c.State())
		})
	}
}

type failingClearStore struct {
	*credential.MemoryStore
}

func (failingClearStore) Clear() error { return errors.New("disk on fire") }

func TestUnauthorized_ClearFailureIsReported(t *testing.T) {
	backend := testutil.NewFakeBackend()
	store := failingClearStore{credential.NewMemoryStore()}
	require.NoError(t, store.Set("stale"))
	c := session.New(backend, store)

	_, err := c.LoadTasks(context.Background())
	require.Error(t, err)
	assert.True(t, service.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestStoredTokenIsSentVerbatim(t *testing.T) {
	c, backend, store := loggedIn(t)
	ctx := context.Background()
	stored, err := store.Get()
	require.NoError(t, err)

	_, err = c.LoadTasks(ctx)
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, "x", "")
	require.NoError(t, err)

	for _, cred := range backend.Credentials() {
		assert.Equal(t, stored.Value, cred.Value)
	}
}

func TestConcurrentCreates_AllAppended(t *testing.T) {
	c, _, _ := loggedIn(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateTask(ctx, "task", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks := c.Tasks()
	require.Len(t, tasks, n)
	seen := make(map[int64]bool)
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
	assert.False(t, c.Snapshot().Loading)
}

func TestLogoutDuringInFlightCreate(t *testing.T) {
	c, backend, store := loggedIn(t)
	stored, err := store.Get()
	require.NoError(t, err)

	backend.BeforeReturn = func(op string) {
		if op == "create" {
			assert.True(t, c.Snapshot().Loading)
			require.NoError(t, c.Logout())
		}
	}

	created, err := c.CreateTask(context.Background(), "late", "")
	require.NoError(t, err)

	assert.Equal(t, stored.Value, backend.Credentials()[0].Value)
	assert.False(t, c.IsAuthenticated())
	assert.Equal(t, []int64{created.ID}, ids(c.Tasks()), "a completed create still applies")
}

func TestSnapshot(t *testing.T) {
	c, backend, _ := loggedIn(t)
	backend.AddTask("alice", "a", nil, 0.2)
	_, err := c.LoadTasks(context.Background())
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Len(t, snap.Tasks, 1)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)

	backend.ListTasksErr = errors.New("boom")
	_, err = c.LoadTasks(context.Background())
	require.Error(t, err)
	assert.EqualError(t, c.Snapshot().Err, "boom")

	_, err = c.LoadTasks(context.Background())
	require.Error(t, err)
	backend.ListTasksErr = nil
	_, err = c.LoadTasks(context.Background())
	require.NoError(t, err)
	assert.NoError(t, c.Snapshot().Err, "a new operation clears the last error")
}

func TestEndToEnd_OverHTTP(t *testing.T) {
	srv := testutil.NewFakeServer(t, testutil.NewFakeBackend())
	store := credential.NewFileStore(t.TempDir() + "/credential.json")
	c := session.New(taskapi.New(srv.APIURL()), store)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "alice", "pw"))
	_, err := c.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)

	milk, err := c.CreateTask(ctx, "Buy milk", "")
	require.NoError(t, err)
	urgent, err := c.CreateTask(ctx, "Urgent: taxes", "deadline monday")
	require.NoError(t, err)

	tasks, err := c.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{milk.ID, urgent.ID}, ids(tasks))

	require.NoError(t, c.DeleteTask(ctx, milk.ID))
	assert.Equal(t, []int64{urgent.ID}, ids(c.Tasks()))

	srv.Backend.Expire()
	_, err = c.LoadTasks(ctx)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.False(t, store.IsAuthenticated())
}

func TestUnauthorized_IsLogged(t *testing.T) {
	backend := testutil.NewFakeBackend()
	store := credential.NewMemoryStore()
	require.NoError(t, store.Set("stale"))

	var logs bytes.Buffer
	logger := logging.New(&logs, true, "text")
	c := session.New(backend, store, session.WithLogger(logger))

	ctx := logging.WithRequestID(context.Background(), "req-42")
	_, err := c.LoadTasks(ctx)
	require.Error(t, err)
	assert.Contains(t, logs.String(), "credential rejected, logging out")
	assert.Contains(t, logs.String(), "op=\"fetch tasks\"")
	assert.Contains(t, logs.String(), "request_id=req-42")
}
