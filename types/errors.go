package types

import "errors"

var (
	// ErrInvalidInput marks a missing or malformed post URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPostNotFound marks a URL that does not resolve to a post.
	ErrPostNotFound = errors.New("post not found")
	// ErrDataUnavailable marks chain data that cannot be used: a zero
	// denominator in the global state or malformed account holdings.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrHistoryUnavailable marks an account history window without a vote
	// cast by the account itself.
	ErrHistoryUnavailable = errors.New("history unavailable")
	// ErrUndefinedInput marks solver input with no defined result.
	ErrUndefinedInput = errors.New("undefined input")
	ErrNetworkFailure = errors.New("network failure")
	ErrVoteSubmission = errors.New("vote submission failed")
)
