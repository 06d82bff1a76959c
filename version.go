package pennon

import "github.com/google/uuid"

// Version is the provider version, reported to the Pennon backend as the
// wrapper SDK version.
const Version = "0.4.2"

const (
	// providerName is the name reported in the OpenFeature metadata and on
	// emitted events.
	providerName = "pennon"

	// sourceIDOpenFeatureGo identifies this wrapper in outgoing SDK
	// configurations, together with Version. Both overwrite any
	// caller-supplied values.
	sourceIDOpenFeatureGo = "OPEN_FEATURE_GO"
)

// newInstanceID returns a unique identifier for one provider instance. It
// is attached to log lines and event metadata so that events from multiple
// providers in the same process can be told apart.
func newInstanceID() string {
	return uuid.NewString()
}
