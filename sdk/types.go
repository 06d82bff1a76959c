package sdk

// Reason reports why an evaluation produced its variation.
type Reason string

const (
	// ReasonTarget marks an individual targeting match.
	ReasonTarget Reason = "TARGET"
	// ReasonRule marks a rollout rule match.
	ReasonRule Reason = "RULE"
	// ReasonDefault marks the flag's default serving strategy.
	ReasonDefault Reason = "DEFAULT"
	// ReasonClient marks the SDK falling back to the caller-supplied
	// default, for example before its first cache sync.
	ReasonClient Reason = "CLIENT"
	// ReasonOffVariation marks a disabled flag serving its off variation.
	ReasonOffVariation Reason = "OFF_VARIATION"
	// ReasonPrerequisite marks a value forced by a prerequisite flag.
	ReasonPrerequisite Reason = "PREREQUISITE"
)

// User identifies the evaluation subject.
type User struct {
	ID         string
	Attributes map[string]string
}

// VariationDetails describes one evaluation result.
type VariationDetails[T any] struct {
	FeatureID      string
	FeatureVersion int32
	UserID         string
	VariationID    string
	VariationName  string
	VariationValue T
	Reason         Reason
}
