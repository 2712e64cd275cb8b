package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApiRequest is one logged HTTP call. StatusCode and DurationMs are filled
// in once the handler returns.
type ApiRequest struct {
	RequestID  uuid.UUID
	Method     string
	Route      string
	IpAddress  string
	SessionID  *uuid.UUID
	StatusCode int
	DurationMs int64
	StartTs    time.Time
}
