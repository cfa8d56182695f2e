package store

import "errors"

var (
	// ErrRemoteUnavailable wraps transport-level failures against the remote
	// store. Transient and retryable; the next scheduled tick retries.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrConfigMissing is returned before any network call when required
	// store configuration (document target or credential) is absent.
	ErrConfigMissing = errors.New("required store configuration missing")
)
