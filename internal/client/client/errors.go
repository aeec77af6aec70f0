package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"google.golang.org/grpc/codes"
)

var (
	ErrNetwork      = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// ValidationError is returned for rejected create/update payloads.
type ValidationError = models.ValidationError

// ServerError is any other non-OK response.
type ServerError struct {
	Status  codes.Code
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%s): %s", e.Status, e.Message)
}
