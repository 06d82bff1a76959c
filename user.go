package pennon

import (
	"encoding/json"
	"fmt"

	"github.com/open-feature/go-sdk/openfeature"
	"github.com/spf13/cast"

	"github.com/pennon-io/openfeature-provider-go/sdk"
)

// toUser translates an OpenFeature evaluation context into the wrapped
// SDK's user record. The targeting key becomes the user ID; every other
// attribute is stringified, since the SDK only transports string
// attributes.
func toUser(evalCtx openfeature.FlattenedContext) (sdk.User, *openfeature.ResolutionError) {
	id, err := cast.ToStringE(evalCtx[openfeature.TargetingKey])
	if err != nil || id == "" {
		resErr := openfeature.NewTargetingKeyMissingResolutionError("targeting key is required")
		return sdk.User{}, &resErr
	}

	attributes := make(map[string]string, len(evalCtx))
	for key, value := range evalCtx {
		if key == openfeature.TargetingKey {
			continue
		}
		str, err := stringifyAttribute(value)
		if err != nil {
			resErr := openfeature.NewInvalidContextResolutionError(fmt.Sprintf("attribute %q: %v", key, err))
			return sdk.User{}, &resErr
		}
		attributes[key] = str
	}

	return sdk.User{ID: id, Attributes: attributes}, nil
}

// stringifyAttribute renders a context attribute for the wrapped SDK.
// Scalars convert directly; structured values fall back to their JSON
// encoding.
func stringifyAttribute(value interface{}) (string, error) {
	if str, err := cast.ToStringE(value); err == nil {
		return str, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("cannot convert value of type %T", value)
	}
	return string(encoded), nil
}
