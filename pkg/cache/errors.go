package cache

import "errors"

// ErrNotFound reports that the requested statistics document does not exist
// at the source.
var ErrNotFound = errors.New("document not found")

// ErrNetwork reports a transport failure while fetching a document. Wrap it
// with Retryable when the failure is transient (timeouts, 5xx responses).
var ErrNetwork = errors.New("network error")
