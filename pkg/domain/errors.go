package domain

import "errors"

var (
	// ErrNotConnected means no active OAuth connection exists for the (user, provider) pair.
	ErrNotConnected = errors.New("provider not connected")

	// ErrRefreshFailed means the provider rejected the refresh grant or the call failed.
	// The previously stored token pair is left untouched.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrMissingCredential means a workflow step requires a provider the user never
	// connected or whose refresh failed.
	ErrMissingCredential = errors.New("missing provider credential")

	// ErrStorage means the connection store is unreachable or inconsistent. It is
	// never folded into ErrNotConnected.
	ErrStorage = errors.New("credential storage failure")

	// ErrProvider means a capability provider call failed after a valid token was supplied.
	ErrProvider = errors.New("provider call failed")

	// ErrParseFailure means the intent parser returned unusable output.
	ErrParseFailure = errors.New("failed to parse user request")
)
