package resolve

import (
	"context"
	"fmt"
)

// Provider resolves a company name to an article title.
// found is false when the name has no match; that is not an error.
type Provider interface {
	Resolve(ctx context.Context, name string) (title string, found bool, err error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, name string) (string, bool, error)

// Resolve implements Provider.
func (f ProviderFunc) Resolve(ctx context.Context, name string) (string, bool, error) {
	return f(ctx, name)
}

// ResolveError represents a provider failure for one name
type ResolveError struct {
	Name    string
	Message string
	Cause   error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve error for %q: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("resolve error for %q: %s", e.Name, e.Message)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}
