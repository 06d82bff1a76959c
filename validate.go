package pennon

import (
	"errors"
	"fmt"
	"reflect"
)

// Runtime kind names used in type-mismatch messages. They follow the
// wrapped SDK's wire format: JSON-style kinds, with every Go numeric type
// collapsing to "number".
const (
	kindNull    = "null"
	kindBoolean = "boolean"
	kindString  = "string"
	kindNumber  = "number"
	kindArray   = "array"
	kindObject  = "object"
)

// kindOf classifies a value's runtime kind. Values outside the wire
// format's vocabulary (channels, funcs, ...) are named by their reflect
// kind so the mismatch message still says something useful.
func kindOf(value interface{}) string {
	if value == nil {
		return kindNull
	}

	switch value.(type) {
	case bool:
		return kindBoolean
	case string:
		return kindString
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return kindNumber
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return kindArray
	case reflect.Map, reflect.Struct:
		return kindObject
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return kindNull
		}
		return kindOf(rv.Elem().Interface())
	default:
		return rv.Kind().String()
	}
}

// isStructured reports whether kind is the object-or-array classification.
func isStructured(kind string) bool {
	return kind == kindObject || kind == kindArray
}

// checkObjectDefault enforces the default-value guard for object flags: the
// caller's fallback must itself be a non-nil object or array. It depends
// only on caller input and runs before anything reaches the wrapped client.
func checkObjectDefault(defaultValue interface{}) error {
	if kind := kindOf(defaultValue); !isStructured(kind) {
		return fmt.Errorf("Default value must be an object or array but got %s", kind)
	}
	return nil
}

// checkObjectResult enforces the result-side checks for object flags: the
// wrapped value must be a non-nil object or array whose array-versus-object
// shape agrees with the default's. Nested element and property types are
// never inspected; the wrapped value crossed a serialization boundary and
// only its outermost shape can be vouched for.
func checkObjectResult(defaultValue, result interface{}) error {
	resultKind := kindOf(result)
	if resultKind == kindNull {
		return errors.New("Expected object but got null")
	}
	if !isStructured(resultKind) {
		return fmt.Errorf("Expected object but got %s", resultKind)
	}

	if defaultKind := kindOf(defaultValue); defaultKind != resultKind {
		return fmt.Errorf("Expected %s but got %s", defaultKind, resultKind)
	}
	return nil
}
