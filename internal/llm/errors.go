package llm

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded marks rate/quota exhaustion at the generation backend.
// Always wrapped in a *ProviderError; match with errors.Is.
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// ProviderError reports a failed call to a generation backend.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(provider, op string, err error) error {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

func quotaErr(provider, op, detail string) error {
	return &ProviderError{Provider: provider, Op: op, Err: fmt.Errorf("%w: %s", ErrQuotaExceeded, detail)}
}
