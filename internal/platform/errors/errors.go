package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	ErrNotLinked      = errors.New("account not linked")
	ErrLinkInProgress = errors.New("link request already in progress")
	ErrQueueFull      = errors.New("submission queue is full")

	// Transport outcomes. A cancelled request is never reported as a failure.
	ErrNetworkCancelled = errors.New("request cancelled")
	ErrNetworkFailed    = errors.New("request failed")
	ErrServerRejected   = errors.New("rejected by server")
)
