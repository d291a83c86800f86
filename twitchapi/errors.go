package twitchapi

import (
	"errors"
	"fmt"
)

// ErrNotLive is returned when the channel is offline or does not exist.
var ErrNotLive = errors.New("stream not live")

// TransportError wraps a failure to talk to the API at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("twitch request failed: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError wraps a 200 response whose body could not be decoded into the expected shape.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("twitch response parse failed: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// StatusError is any non-200 response. Message is the reason phrase, e.g. "Not Found".
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("twitch request failed: %d %s", e.StatusCode, e.Message)
}
