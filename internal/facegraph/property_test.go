package facegraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/facegraph/internal/archive"
	"github.com/zclconf/go-cty/cty"
)

func TestNewProperty(t *testing.T) {
	testCases := []struct {
		name    string
		typ     PropertyType
		value   cty.Value
		choices []string
		check   func(t *testing.T, p UserProperty)
		wantErr bool
	}{
		{
			name:  "integer from string",
			typ:   PropInteger,
			value: cty.StringVal("7"),
			check: func(t *testing.T, p UserProperty) { assert.Equal(t, int32(7), p.Int()) },
		},
		{
			name:    "integer rejects fraction",
			typ:     PropInteger,
			value:   cty.NumberFloatVal(1.5),
			wantErr: true,
		},
		{
			name:  "float",
			typ:   PropFloat,
			value: cty.NumberFloatVal(0.25),
			check: func(t *testing.T, p UserProperty) { assert.Equal(t, 0.25, p.Float()) },
		},
		{
			name:  "bool",
			typ:   PropBool,
			value: cty.True,
			check: func(t *testing.T, p UserProperty) { assert.True(t, p.Bool()) },
		},
		{
			name:    "choice in set",
			typ:     PropChoice,
			value:   cty.StringVal("left"),
			choices: []string{"left", "right"},
			check:   func(t *testing.T, p UserProperty) { assert.Equal(t, "left", p.Str()) },
		},
		{
			name:    "choice outside set",
			typ:     PropChoice,
			value:   cty.StringVal("up"),
			choices: []string{"left", "right"},
			wantErr: true,
		},
		{
			name:    "null value",
			typ:     PropString,
			value:   cty.NullVal(cty.String),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProperty("p", tc.typ, tc.value, tc.choices)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProperty)
				return
			}
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestUserProperty_Serialize(t *testing.T) {
	choice, err := NewProperty("side", PropChoice, cty.StringVal("right"), []string{"left", "right"})
	require.NoError(t, err)
	props := []UserProperty{
		IntProperty("lod", -3),
		BoolProperty("mirrored", true),
		FloatProperty("weight", 0.5),
		StringProperty("bone", "jaw"),
		choice,
	}

	var buf bytes.Buffer
	require.NoError(t, SerializeProperties(archive.NewWriter(&buf), &props))

	var loaded []UserProperty
	require.NoError(t, SerializeProperties(archive.NewReader(&buf), &loaded))
	require.Len(t, loaded, len(props))
	for i := range props {
		assert.True(t, props[i].Equal(loaded[i]), "property %s", props[i].Name)
	}
}
