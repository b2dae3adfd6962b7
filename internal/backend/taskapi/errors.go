package taskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasksession/internal/service"
)

// transportError classifies a failure to get any response at all.
func (c *Client) transportError(op string, err error) error {
	msg := fmt.Sprintf("cannot reach task server at %s (is the backend running?)", c.baseURL)

	var uerr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	case errors.As(err, &uerr) && uerr.Timeout():
		msg = fmt.Sprintf("request to %s timed out", c.baseURL)
	}
	return &service.Error{Kind: service.KindConnectivity, Op: op, Message: msg, Err: err}
}

// statusError classifies a non-2xx response checked by googleapi.CheckResponse.
// Auth endpoints map every rejection to KindAuth; data endpoints map 401 to
// KindUnauthorized and everything else to KindOperation.
func statusError(op string, auth bool, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &service.Error{Kind: service.KindOperation, Op: op, Message: "failed to " + op, Err: err}
	}

	e := &service.Error{
		Kind:    service.KindOperation,
		Op:      op,
		Status:  gerr.Code,
		Message: parseDetail([]byte(gerr.Body)),
		Err:     err,
	}
	switch {
	case auth:
		e.Kind = service.KindAuth
	case gerr.Code == http.StatusUnauthorized:
		e.Kind = service.KindUnauthorized
		if e.Message == "" {
			e.Message = "session expired or invalid"
		}
	}
	if e.Message == "" {
		e.Message = "failed to " + op
	}
	return e
}

// loginError classifies a failed password grant.
func (c *Client) loginError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		e := &service.Error{
			Kind:    service.KindAuth,
			Op:      opLogin,
			Message: parseDetail(rerr.Body),
			Err:     err,
		}
		if rerr.Response != nil {
			e.Status = rerr.Response.StatusCode
		}
		if e.Message == "" {
			e.Message = "failed to login"
		}
		return e
	}

	var uerr *url.Error
	if errors.As(err, &uerr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.transportError(opLogin, err)
	}

	return &service.Error{Kind: service.KindAuth, Op: opLogin, Message: "failed to login", Err: err}
}

// parseDetail extracts the server's "detail" field. It is either a string or,
// for request validation failures, a list of objects with a "msg" field.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
