package pennon

import (
	"reflect"
	"testing"

	"github.com/open-feature/go-sdk/openfeature"
)

func TestToUser(t *testing.T) {
	t.Run("Translates targeting key and attributes", func(t *testing.T) {
		evalCtx := openfeature.FlattenedContext{
			openfeature.TargetingKey: "user-1",
			"plan":                   "pro",
			"retries":                3,
			"ratio":                  0.25,
			"beta":                   true,
			"groups":                 []string{"a", "b"},
			"profile":                map[string]interface{}{"tier": 1},
		}

		user, resErr := toUser(evalCtx)
		if resErr != nil {
			t.Fatalf("Expected translation to succeed, got: %s", resErr.Error())
		}
		if user.ID != "user-1" {
			t.Errorf("Expected user ID 'user-1', got %s", user.ID)
		}

		expected := map[string]string{
			"plan":    "pro",
			"retries": "3",
			"ratio":   "0.25",
			"beta":    "true",
			"groups":  `["a","b"]`,
			"profile": `{"tier":1}`,
		}
		if !reflect.DeepEqual(user.Attributes, expected) {
			t.Errorf("Expected attributes %v, got %v", expected, user.Attributes)
		}
	})

	t.Run("Numeric targeting key is stringified", func(t *testing.T) {
		user, resErr := toUser(openfeature.FlattenedContext{openfeature.TargetingKey: 7})
		if resErr != nil {
			t.Fatalf("Expected translation to succeed, got: %s", resErr.Error())
		}
		if user.ID != "7" {
			t.Errorf("Expected user ID '7', got %s", user.ID)
		}
	})

	t.Run("Missing targeting key", func(t *testing.T) {
		_, resErr := toUser(openfeature.FlattenedContext{"app": "checkout"})
		if resErr == nil {
			t.Fatal("Expected a resolution error")
		}
		if resErr.Error() != "TARGETING_KEY_MISSING: targeting key is required" {
			t.Errorf("Expected TARGETING_KEY_MISSING, got: %s", resErr.Error())
		}
	})

	t.Run("Empty targeting key", func(t *testing.T) {
		_, resErr := toUser(openfeature.FlattenedContext{openfeature.TargetingKey: ""})
		if resErr == nil {
			t.Fatal("Expected a resolution error")
		}
		if resErr.Error() != "TARGETING_KEY_MISSING: targeting key is required" {
			t.Errorf("Expected TARGETING_KEY_MISSING, got: %s", resErr.Error())
		}
	})

	t.Run("Non-scalar targeting key", func(t *testing.T) {
		_, resErr := toUser(openfeature.FlattenedContext{openfeature.TargetingKey: map[string]string{}})
		if resErr == nil {
			t.Fatal("Expected a resolution error")
		}
		if resErr.Error() != "TARGETING_KEY_MISSING: targeting key is required" {
			t.Errorf("Expected TARGETING_KEY_MISSING, got: %s", resErr.Error())
		}
	})

	t.Run("Unconvertible attribute", func(t *testing.T) {
		evalCtx := openfeature.FlattenedContext{
			openfeature.TargetingKey: "user-1",
			"bad":                    make(chan int),
		}
		_, resErr := toUser(evalCtx)
		if resErr == nil {
			t.Fatal("Expected a resolution error")
		}
		if resErr.Error() != `INVALID_CONTEXT: attribute "bad": cannot convert value of type chan int` {
			t.Errorf("Expected INVALID_CONTEXT, got: %s", resErr.Error())
		}
	})
}

func TestStringifyAttribute(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{name: "String", value: "pro", expected: "pro"},
		{name: "Int", value: 3, expected: "3"},
		{name: "Float", value: 0.25, expected: "0.25"},
		{name: "Bool", value: true, expected: "true"},
		{name: "Nil", value: nil, expected: ""},
		{name: "Slice", value: []string{"a", "b"}, expected: `["a","b"]`},
		{name: "Map", value: map[string]interface{}{"tier": 1}, expected: `{"tier":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			str, err := stringifyAttribute(tc.value)
			if err != nil {
				t.Fatalf("Expected conversion to succeed, got: %v", err)
			}
			if str != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, str)
			}
		})
	}

	t.Run("Unconvertible", func(t *testing.T) {
		_, err := stringifyAttribute(func() {})
		if err == nil {
			t.Fatal("Expected an error")
		}
		if err.Error() != "cannot convert value of type func()" {
			t.Errorf("Expected conversion error, got: %v", err)
		}
	})
}
