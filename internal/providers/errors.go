package providers

import "fmt"

// ProviderError reports an unavailable or malformed external lookup. The
// engine downgrades it to a user-facing "unavailable" message.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s provider: unexpected status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
