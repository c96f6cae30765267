package services

import (
	"errors"
	"fmt"
	"strings"

	"alumnihub/models"
)

// ErrBackendUnavailable is a connectivity failure: the data service handle
// could not be constructed or timed out
var ErrBackendUnavailable = errors.New("unable to connect to the backend")

// QueryError is a specific remote call that was rejected
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ValidationError is invalid local form input; it never reaches the data service
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func validation(fields []models.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func connectivity(err error) error {
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

func queryError(op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Err: err}
}
