package schema

import (
	"fmt"
	"reflect"
	"time"
)

// Type defines the contract for parameter validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type basicType struct {
	name  string
	check func(any) error
}

func (t *basicType) Name() string             { return t.name }
func (t *basicType) Validate(value any) error { return t.check(value) }

// String accepts string values.
func String() Type {
	return &basicType{name: "string", check: func(v any) error {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		return nil
	}}
}

// Int accepts integers, and floats that are whole numbers (YAML and JSON decoding).
func Int() Type {
	return &basicType{name: "int", check: func(v any) error {
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		case float64:
			if n == float64(int64(n)) {
				return nil
			}
			return fmt.Errorf("expected int, got float (not a whole number)")
		default:
			return fmt.Errorf("expected int, got %T", v)
		}
	}}
}

// Float accepts any numeric value.
func Float() Type {
	return &basicType{name: "float", check: func(v any) error {
		switch v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		default:
			return fmt.Errorf("expected float, got %T", v)
		}
	}}
}

// Bool accepts boolean values.
func Bool() Type {
	return &basicType{name: "bool", check: func(v any) error {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		return nil
	}}
}

// Duration accepts time.Duration values and strings time.ParseDuration understands.
func Duration() Type {
	return &basicType{name: "duration", check: func(v any) error {
		switch d := v.(type) {
		case time.Duration:
			return nil
		case string:
			if _, err := time.ParseDuration(d); err != nil {
				return fmt.Errorf("expected duration: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("expected duration, got %T", v)
		}
	}}
}

// Any accepts every value.
func Any() Type {
	return &basicType{name: "any", check: func(any) error { return nil }}
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

// Slice accepts slices whose elements all conform to elemType.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Custom creates a type from a user-defined validation function.
func Custom(name string, validate func(any) error) Type {
	return &basicType{name: name, check: validate}
}

type optionalType struct {
	Type
}

func (t optionalType) Name() string { return t.Type.Name() + "?" }

// Optional marks a field that may be omitted. A present value must still conform to t.
func Optional(t Type) Type {
	return optionalType{Type: t}
}

// IsOptional reports whether t was wrapped with Optional.
func IsOptional(t Type) bool {
	_, ok := t.(optionalType)
	return ok
}
