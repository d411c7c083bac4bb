// Package apiclient calls the store's REST API. Credentials travel with each
// call and every response passes through one Policy, which is the only place
// a 401 is acted on.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const FallbackMessage = "Something went wrong. Please try again."

type Kind int

const (
	KindTransport Kind = iota
	KindUnauthorized
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "server"
	}
}

// Error is every failure a call can return.
type Error struct {
	Kind    Kind
	Status  int
	Message string // server-supplied, may be empty
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text to show the user for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return FallbackMessage
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// Credentials is the bearer token for one call. The zero value is anonymous.
type Credentials struct {
	Token string
}

// Policy reacts to rejected credentials. Teardown clears the session that
// owned the token and OnUnauthorized sends the user to the login entry
// point; both run for every 401 whichever call produced it.
type Policy struct {
	Teardown       func()
	OnUnauthorized func()
}

func (p *Policy) unauthorized() {
	if p == nil {
		return
	}
	if p.Teardown != nil {
		p.Teardown()
	}
	if p.OnUnauthorized != nil {
		p.OnUnauthorized()
	}
}

type Client struct {
	BaseURL string
	Policy  *Policy
	Timeout time.Duration
}

// New returns a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, policy *Policy) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Policy: policy, Timeout: 15 * time.Second}
}

func (c *Client) do(ctx context.Context, method, path string, cred Credentials, in, out any) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindTransport, Err: err}
	}
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.BaseURL + "/" + strings.TrimLeft(path, "/"))
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if cred.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+cred.Token)
	}
	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if in != nil {
		a.JSON(in)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return &Error{Kind: KindTransport, Err: err}
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return &Error{Kind: KindTransport, Err: errors.Join(errs...)}
	}
	if status >= 200 && status < 300 {
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &Error{Kind: KindServer, Status: status, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	var env struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &env)
	e := &Error{Status: status, Message: env.Message}
	switch {
	case status == fiber.StatusUnauthorized:
		e.Kind = KindUnauthorized
		c.Policy.unauthorized()
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindValidation
	}
	return e
}
