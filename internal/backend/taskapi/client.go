// Package taskapi implements the service.Backend interface over the task server's REST API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasksession/internal/config"
	"tasksession/internal/credential"
	"tasksession/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = config.DefaultRequestTimeout

	registerPath = "auth/register"
	loginPath    = "auth/login"
	tasksPath    = "tasks"
	taskPath     = "tasks/{id}"

	opRegister = "register"
	opLogin    = "login"
	opList     = "fetch tasks"
	opCreate   = "create task"
	opDelete   = "delete task"
)

// Client implements service.Backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL, which must end in "/".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: APITimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http = &http.Client{
		Transport:     &loggingTransport{base: base, logger: c.logger},
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
	}
	return c
}

// NewFromConfig creates a client from the loaded configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	opts = append([]Option{WithTimeout(cfg.RequestTimeout)}, opts...)
	return New(cfg.ServerURL, opts...)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, call{
		op:     opRegister,
		auth:   true,
		method: http.MethodPost,
		path:   registerPath,
		body:   body,
	})
}

// Login performs the OAuth2 password grant against the login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (credential.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  googleapi.ResolveRelative(c.baseURL, loginPath),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	token, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return credential.Credential{}, c.loginError(err)
	}
	return credential.Credential{
		Value: token.AccessToken,
		Kind:  credential.NormalizeKind(token.TokenType),
	}, nil
}

// ListTasks returns the owner's tasks in server order.
func (c *Client) ListTasks(ctx context.Context, cred credential.Credential) ([]service.Task, error) {
	var tasks []service.Task
	err := c.do(ctx, call{
		op:     opList,
		cred:   cred,
		method: http.MethodGet,
		path:   tasksPath,
		out:    &tasks,
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, cred credential.Credential, task service.NewTask) (service.Task, error) {
	var created service.Task
	err := c.do(ctx, call{
		op:     opCreate,
		cred:   cred,
		method: http.MethodPost,
		path:   tasksPath,
		body:   task,
		out:    &created,
	})
	if err != nil {
		return service.Task{}, err
	}
	return created, nil
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, cred credential.Credential, id int64) error {
	return c.do(ctx, call{
		op:     opDelete,
		cred:   cred,
		method: http.MethodDelete,
		path:   taskPath,
		params: map[string]string{"id": strconv.FormatInt(id, 10)},
	})
}

// call describes one JSON round trip.
type call struct {
	op     string
	auth   bool // register/login endpoint: rejections are KindAuth
	cred   credential.Credential
	method string
	path   string
	params map[string]string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return &service.Error{Kind: service.KindOperation, Op: cl.op, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, googleapi.ResolveRelative(c.baseURL, cl.path), body)
	if err != nil {
		return &service.Error{Kind: service.KindOperation, Op: cl.op, Message: "failed to build request", Err: err}
	}
	if cl.params != nil {
		googleapi.Expand(req.URL, cl.params)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient(cl.cred).Do(req)
	if err != nil {
		return c.transportError(cl.op, err)
	}
	defer googleapi.CloseBody(res)

	if err := googleapi.CheckResponse(res); err != nil {
		return statusError(cl.op, cl.auth, err)
	}

	if cl.out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(cl.out); err != nil {
		return &service.Error{
			Kind:    service.KindOperation,
			Op:      cl.op,
			Status:  res.StatusCode,
			Message: "invalid response from server",
			Err:     err,
		}
	}
	return nil
}

// httpClient returns a client that sends cred as a bearer token. The token is
// captured here, so a Clear racing with this request does not affect it.
// An empty credential sends no Authorization header.
func (c *Client) httpClient(cred credential.Credential) *http.Client {
	if cred.Value == "" {
		return c.http
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cred.Value,
				TokenType:   cred.Kind,
			}),
			Base: c.http.Transport,
		},
	}
}
