package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers malformed dates, negative counts and
	// series that break ordering or contain non-finite values.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyHistoricalSeries is returned when a chart is stitched with
	// no historical anchor point.
	ErrEmptyHistoricalSeries = errors.New("empty historical series")

	// ErrInternalInconsistency signals a broken post-condition. It is a
	// defect, never something a caller can trigger with bad input.
	ErrInternalInconsistency = errors.New("internal inconsistency")

	// ErrRemoteFetchFailure matches every *RemoteFetchError.
	ErrRemoteFetchFailure = errors.New("remote fetch failure")

	ErrStaleSelection  = errors.New("selection superseded by a newer request")
	ErrSessionNotFound = errors.New("session not found")
)

// RemoteFetchError wraps a failure coming from the forecasting service or
// one of the market data providers. Message is the collaborator's own
// message when one was available.
type RemoteFetchError struct {
	Op         string
	Code       string
	StatusCode int
	Message    string
	Err        error
}

func NewRemoteFetchError(op, code string, err error) *RemoteFetchError {
	return &RemoteFetchError{
		Op:      op,
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

func (e *RemoteFetchError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.Code != "" {
		msg = fmt.Sprintf("%s for %s failed", e.Op, e.Code)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status code %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

func (e *RemoteFetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemoteFetchFailure}
	}
	return []error{ErrRemoteFetchFailure, e.Err}
}
