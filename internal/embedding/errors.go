package embedding

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded marks rate/quota exhaustion at a remote provider. It is
// always wrapped in a *ProviderError; match with errors.Is so callers can
// defer or switch providers instead of treating it as a hard backend failure.
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// ProviderError reports a failed call to an embedding backend. The triggering
// operation is fatal; no automatic retry happens beyond transient transport
// retries inside the client.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// providerErr wraps err as a ProviderError for the given provider and operation.
func providerErr(provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// quotaErr builds a ProviderError wrapping ErrQuotaExceeded with backend detail.
func quotaErr(provider, op, detail string) error {
	return &ProviderError{Provider: provider, Op: op, Err: fmt.Errorf("%w: %s", ErrQuotaExceeded, detail)}
}
