package testutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"tasksession/internal/credential"
	"tasksession/internal/service"
)

// FakeServer serves a FakeBackend over the task server's HTTP API.
type FakeServer struct {
	*httptest.Server

	Backend *FakeBackend
	Echo    *echo.Echo

	mu       sync.Mutex
	requests []*http.Request
}

// NewFakeServer starts a FakeServer for backend and closes it when t ends.
// Routes live under /api, as on the real server.
func NewFakeServer(t *testing.T, backend *FakeBackend) *FakeServer {
	t.Helper()

	s := &FakeServer{Backend: backend, Echo: echo.New()}
	s.Echo.HideBanner = true
	s.Echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			s.requests = append(s.requests, c.Request().Clone(c.Request().Context()))
			s.mu.Unlock()
			return next(c)
		}
	})

	api := s.Echo.Group("/api")
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.DELETE("/tasks/:id", s.deleteTask)

	s.Server = httptest.NewServer(s.Echo)
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the base URL clients should be configured with.
func (s *FakeServer) APIURL() string {
	return s.URL + "/api/"
}

// Requests returns every request the server received, in order.
func (s *FakeServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or nil.
func (s *FakeServer) LastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

type detailItem struct {
	Msg string `json:"msg"`
}

func (s *FakeServer) register(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Username == "" || body.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []detailItem{{Msg: "Field required"}},
		})
	}
	if err := s.Backend.Register(c.Request().Context(), body.Username, body.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": 1, "username": body.Username})
}

func (s *FakeServer) login(c echo.Context) error {
	if c.FormValue("grant_type") != "password" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []detailItem{{Msg: "grant_type must be password"}},
		})
	}
	cred, err := s.Backend.Login(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"access_token": cred.Value,
		"token_type":   "bearer",
	})
}

func (s *FakeServer) listTasks(c echo.Context) error {
	tasks, err := s.Backend.ListTasks(c.Request().Context(), bearer(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *FakeServer) createTask(c echo.Context) error {
	var body service.NewTask
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []detailItem{{Msg: "Input should be a valid dictionary"}},
		})
	}
	task, err := s.Backend.CreateTask(c.Request().Context(), bearer(c), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *FakeServer) deleteTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []detailItem{{Msg: "Input should be a valid integer"}},
		})
	}
	if err := s.Backend.DeleteTask(c.Request().Context(), bearer(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bearer extracts the token from the Authorization header. A missing header
// yields an empty credential, which the fake rejects like any unknown token.
func bearer(c echo.Context) credential.Credential {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return credential.Credential{}
	}
	return credential.New(token)
}

func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	detail := err.Error()

	var serr *service.Error
	if errors.As(err, &serr) {
		if serr.Status != 0 {
			status = serr.Status
		}
		detail = serr.Message
	}
	return c.JSON(status, map[string]string{"detail": detail})
}
