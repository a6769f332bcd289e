package schema

import "sort"

// Schema is a map of parameter names to their expected types.
type Schema map[string]Type

// Validate checks that params conform to s: required fields are present,
// every value matches its type, and no undeclared key is set.
// A nil Schema accepts anything.
func Validate(s Schema, params map[string]any) error {
	if s == nil {
		return nil
	}

	var errs []error
	for _, key := range sortedKeys(s) {
		typ := s[key]
		value, exists := params[key]
		if !exists {
			if !IsOptional(typ) {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	for _, key := range sortedKeys(params) {
		if _, declared := s[key]; !declared {
			errs = append(errs, &ValidationError{Key: key, Reason: "unknown parameter", Value: params[key]})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
