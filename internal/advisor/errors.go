package advisor

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is wrapped in a ServiceError when the service answers
// without any usable choice.
var ErrEmptyResponse = errors.New("empty completion response")

// ServiceError reports any failure of the remote completion call: transport,
// authentication, quota, or a malformed/empty response. Sub-kinds are not
// distinguished at this layer; Unwrap exposes the cause for logging.
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service (model %s): %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
