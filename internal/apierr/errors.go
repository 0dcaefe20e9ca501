// Package apierr defines the error taxonomy exposed by the HTTP API and the
// central translation layer that renders it. Handlers and middleware return
// these typed errors; HTTPErrorHandler maps each type to a status code and a
// consistent `{"errors": ...}` body. Internal failure details are logged,
// never written to clients.
package apierr

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Validation carries a field→message map for malformed input. Rendered as
// HTTP 400 with the map under "errors".
type Validation struct {
	Fields map[string]string
}

func (e *Validation) Error() string { return "validation failed" }

// NewValidation builds a Validation error from a field→message map.
func NewValidation(fields map[string]string) *Validation {
	return &Validation{Fields: fields}
}

// Conflict signals a uniqueness violation (duplicate email). Rendered as
// HTTP 409 with the message keyed by the conflicting field.
type Conflict struct {
	Field   string
	Message string
}

func (e *Conflict) Error() string { return e.Message }

// Authentication covers bad or missing credentials. Status is 400 for
// login failures (deliberately undifferentiated between unknown email and
// wrong password) and 401 for missing or invalid tokens.
type Authentication struct {
	Status  int
	Message string
}

func (e *Authentication) Error() string { return e.Message }

// NotFound covers both genuinely missing resources and resources owned by
// someone else; the two are indistinguishable on the wire so ownership is
// never leaked.
type NotFound struct {
	Message string
}

func (e *NotFound) Error() string { return e.Message }

// Common authentication failures.
var (
	ErrMissingCredentials = &Authentication{Status: http.StatusUnauthorized, Message: "Authentication credentials were not provided."}
	ErrInvalidToken       = &Authentication{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	ErrBadLogin           = &Authentication{Status: http.StatusBadRequest, Message: "Incorrect username or password"}
)

// HTTPErrorHandler is installed as the echo error handler. Every error that
// escapes a handler or middleware passes through here exactly once and is
// rendered into the `{"errors": ...}` envelope. Unrecognized errors become
// a generic 400 so persistence and library internals never reach callers.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var body any

	switch e := err.(type) {
	case *Validation:
		code = http.StatusBadRequest
		body = echo.Map{"errors": e.Fields}
	case *Conflict:
		code = http.StatusConflict
		body = echo.Map{"errors": map[string]string{e.Field: e.Message}}
	case *Authentication:
		code = e.Status
		body = echo.Map{"errors": map[string]string{"details": e.Message}}
	case *NotFound:
		code = http.StatusNotFound
		body = echo.Map{"errors": map[string]string{"details": e.Message}}
	case *echo.HTTPError:
		code = e.Code
		msg := http.StatusText(code)
		if s, ok := e.Message.(string); ok {
			msg = s
		}
		body = echo.Map{"errors": map[string]string{"details": msg}}
	default:
		log.Printf("unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		code = http.StatusBadRequest
		body = echo.Map{"errors": map[string]string{"details": "Something went wrong"}}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if jsonErr := c.JSON(code, body); jsonErr != nil {
		log.Printf("error handler write failed: %v", jsonErr)
	}
}
