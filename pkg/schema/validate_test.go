package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/stackbt/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	s := schema.Schema{
		"target": schema.String(),
		"ticks":  schema.Int(),
		"speed":  schema.Optional(schema.Float()),
		"every":  schema.Optional(schema.Duration()),
		"tags":   schema.Optional(schema.Slice(schema.String())),
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr []string
	}{
		{
			name:   "valid",
			params: map[string]any{"target": "door", "ticks": 3, "speed": 1.5, "every": "250ms", "tags": []any{"a"}},
		},
		{
			name:   "whole float accepted as int",
			params: map[string]any{"target": "door", "ticks": 3.0},
		},
		{
			name:   "duration value",
			params: map[string]any{"target": "door", "ticks": 1, "every": 2 * time.Second},
		},
		{
			name:    "missing required",
			params:  map[string]any{"target": "door"},
			wantErr: []string{`field "ticks": required`},
		},
		{
			name:    "wrong types",
			params:  map[string]any{"target": 7, "ticks": 1.5},
			wantErr: []string{`field "target"`, `field "ticks"`},
		},
		{
			name:    "unknown key",
			params:  map[string]any{"target": "door", "ticks": 1, "sped": 2},
			wantErr: []string{`field "sped": unknown parameter`},
		},
		{
			name:    "bad duration",
			params:  map[string]any{"target": "door", "ticks": 1, "every": "soon"},
			wantErr: []string{`field "every"`},
		},
		{
			name:    "bad slice element",
			params:  map[string]any{"target": "door", "ticks": 1, "tags": []any{"a", 2}},
			wantErr: []string{"element 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(s, tt.params)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Len(t, schema.ValidationErrors(err), len(tt.wantErr))
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestValidate_NilSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, schema.Validate(nil, map[string]any{"x": 1}))
}

func TestPrefix(t *testing.T) {
	err := schema.Validate(schema.Schema{"n": schema.Int()}, nil)
	err = schema.Prefix("root.children[0].params", err)

	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "root.children[0].params.n", ve.Key)
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "[int]", schema.Slice(schema.Int()).Name())
	assert.Equal(t, "string?", schema.Optional(schema.String()).Name())
	assert.True(t, schema.IsOptional(schema.Optional(schema.Bool())))
	assert.False(t, schema.IsOptional(schema.Bool()))
	assert.Equal(t, "positive", schema.Custom("positive", func(any) error { return nil }).Name())
}
