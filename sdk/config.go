package sdk

import "time"

// Config configures the Pennon server SDK client. The zero value is not
// usable; APIKey and Host are validated by the SDK itself.
type Config struct {
	// APIKey authenticates the SDK against the Pennon API.
	APIKey string

	// Host is the Pennon API endpoint, host[:port].
	Host string

	// Tag scopes evaluation to the feature tag configured in the
	// dashboard. Empty evaluates against all features of the environment.
	Tag string

	// PollingInterval controls how often the SDK refreshes its flag cache.
	PollingInterval time.Duration

	// EventsFlushInterval controls how often evaluation events are sent to
	// the Pennon API.
	EventsFlushInterval time.Duration

	// SDKVersion and SourceID identify the calling wrapper to the Pennon
	// backend. The OpenFeature provider overwrites both on construction;
	// values set by the caller are ignored.
	SDKVersion string
	SourceID   string
}
