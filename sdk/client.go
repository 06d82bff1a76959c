// Package sdk declares the surface of the Pennon server-side SDK that the
// OpenFeature provider consumes. The provider never implements evaluation
// itself; everything beyond lifecycle management and result validation is
// delegated to a Client implementation.
package sdk

import (
	"context"
	"errors"
	"time"
)

// ErrInitializeTimeout is returned by WaitForInitialization when the timeout
// elapses before the client finishes its first flag cache sync. The client
// stays usable and keeps syncing in the background.
var ErrInitializeTimeout = errors.New("sdk: initialize timeout")

// Client is the wrapped Pennon SDK client. Implementations are safe for
// concurrent use.
type Client interface {
	// BooleanVariationDetails evaluates a boolean flag for user.
	BooleanVariationDetails(ctx context.Context, user User, featureID string, defaultValue bool) VariationDetails[bool]

	// StringVariationDetails evaluates a string flag for user.
	StringVariationDetails(ctx context.Context, user User, featureID string, defaultValue string) VariationDetails[string]

	// NumberVariationDetails evaluates a number flag for user.
	NumberVariationDetails(ctx context.Context, user User, featureID string, defaultValue float64) VariationDetails[float64]

	// ObjectVariationDetails evaluates an object or array flag for user.
	// The concrete type of the returned value is whatever the flag payload
	// decoded to; callers must validate it at runtime.
	ObjectVariationDetails(ctx context.Context, user User, featureID string, defaultValue interface{}) VariationDetails[interface{}]

	// WaitForInitialization blocks until the first flag cache sync
	// completes, until timeout elapses (ErrInitializeTimeout), or until ctx
	// is done.
	WaitForInitialization(ctx context.Context, timeout time.Duration) error

	// Destroy releases the client's resources. The client must not be used
	// afterwards.
	Destroy()
}
