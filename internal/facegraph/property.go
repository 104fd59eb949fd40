package facegraph

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/vk/facegraph/internal/archive"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// PropertyType is the declared type of a user property.
type PropertyType int32

const (
	PropInteger PropertyType = iota
	PropBool
	PropFloat
	PropString
	PropChoice
)

func (t PropertyType) String() string {
	switch t {
	case PropInteger:
		return "integer"
	case PropBool:
		return "bool"
	case PropFloat:
		return "float"
	case PropString:
		return "string"
	case PropChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// ParsePropertyType accepts the names produced by String.
func ParsePropertyType(s string) (PropertyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return PropInteger, nil
	case "bool":
		return PropBool, nil
	case "float", "number":
		return PropFloat, nil
	case "string":
		return PropString, nil
	case "choice":
		return PropChoice, nil
	}
	return PropInteger, fmt.Errorf("%w: unknown property type %q", ErrInvalidProperty, s)
}

func (t PropertyType) ctyType() cty.Type {
	switch t {
	case PropInteger, PropFloat:
		return cty.Number
	case PropBool:
		return cty.Bool
	default:
		return cty.String
	}
}

// UserProperty is a named, typed value attached to a node for use by the
// engine-side consumers of the graph.
type UserProperty struct {
	Name    string
	Type    PropertyType
	Value   cty.Value
	Choices []string // allowed values of a choice property
}

// NewProperty builds a property, converting value to the declared type.
func NewProperty(name string, typ PropertyType, value cty.Value, choices []string) (UserProperty, error) {
	p := UserProperty{Name: name, Type: typ, Choices: slices.Clone(choices)}
	if name == "" {
		return p, fmt.Errorf("%w: empty name", ErrInvalidProperty)
	}
	if value.IsNull() || !value.IsKnown() {
		return p, fmt.Errorf("%w: property '%s' has no value", ErrInvalidProperty, name)
	}
	converted, err := convert.Convert(value, typ.ctyType())
	if err != nil {
		return p, fmt.Errorf("%w: property '%s' cannot be %s: %v", ErrInvalidProperty, name, typ, err)
	}
	switch typ {
	case PropInteger:
		if !converted.AsBigFloat().IsInt() {
			return p, fmt.Errorf("%w: property '%s' must be a whole number", ErrInvalidProperty, name)
		}
		var i int64
		if err := gocty.FromCtyValue(converted, &i); err != nil || i < math.MinInt32 || i > math.MaxInt32 {
			return p, fmt.Errorf("%w: property '%s' is out of integer range", ErrInvalidProperty, name)
		}
	case PropChoice:
		if !slices.Contains(choices, converted.AsString()) {
			return p, fmt.Errorf("%w: property '%s' value %q is not one of %v", ErrInvalidProperty, name, converted.AsString(), choices)
		}
	}
	p.Value = converted
	return p, nil
}

// IntProperty returns an integer property.
func IntProperty(name string, v int32) UserProperty {
	return UserProperty{Name: name, Type: PropInteger, Value: cty.NumberIntVal(int64(v))}
}

// BoolProperty returns a bool property.
func BoolProperty(name string, v bool) UserProperty {
	return UserProperty{Name: name, Type: PropBool, Value: cty.BoolVal(v)}
}

// FloatProperty returns a float property.
func FloatProperty(name string, v float64) UserProperty {
	return UserProperty{Name: name, Type: PropFloat, Value: cty.NumberFloatVal(v)}
}

// StringProperty returns a string property.
func StringProperty(name, v string) UserProperty {
	return UserProperty{Name: name, Type: PropString, Value: cty.StringVal(v)}
}

// Int returns the value of an integer property, or 0.
func (p UserProperty) Int() int32 {
	var i int64
	if p.Type != PropInteger || p.Value.IsNull() || gocty.FromCtyValue(p.Value, &i) != nil {
		return 0
	}
	return int32(i)
}

// Float returns the value of a numeric property, or 0.
func (p UserProperty) Float() float64 {
	if p.Value.IsNull() || !p.Value.Type().Equals(cty.Number) {
		return 0
	}
	f, _ := p.Value.AsBigFloat().Float64()
	return f
}

// Bool returns the value of a bool property, or false.
func (p UserProperty) Bool() bool {
	if p.Value.IsNull() || !p.Value.Type().Equals(cty.Bool) {
		return false
	}
	return p.Value.True()
}

// Str returns the value of a string or choice property, or "".
func (p UserProperty) Str() string {
	if p.Value.IsNull() || !p.Value.Type().Equals(cty.String) {
		return ""
	}
	return p.Value.AsString()
}

// Clone returns a deep copy.
func (p UserProperty) Clone() UserProperty {
	p.Choices = slices.Clone(p.Choices)
	return p
}

// Equal reports whether two properties have the same name, type, value and
// choices.
func (p UserProperty) Equal(o UserProperty) bool {
	if p.Name != o.Name || p.Type != o.Type || !slices.Equal(p.Choices, o.Choices) {
		return false
	}
	if p.Value.IsNull() || o.Value.IsNull() {
		return p.Value.IsNull() == o.Value.IsNull()
	}
	return p.Value.RawEquals(o.Value)
}

const userPropertyVersion = 1

// Serialize reads or writes the property.
func (p *UserProperty) Serialize(ar archive.Archive) error {
	ar.Version("UserProperty", userPropertyVersion)
	ar.String(&p.Name)
	typ := int32(p.Type)
	ar.Int32(&typ)
	p.Type = PropertyType(typ)

	loading := ar.IsLoading()
	switch p.Type {
	case PropInteger:
		v := p.Int()
		ar.Int32(&v)
		if loading {
			p.Value = cty.NumberIntVal(int64(v))
		}
	case PropBool:
		v := p.Bool()
		ar.Bool(&v)
		if loading {
			p.Value = cty.BoolVal(v)
		}
	case PropFloat:
		v := p.Float()
		ar.Float64(&v)
		if loading {
			p.Value = cty.NumberFloatVal(v)
		}
	case PropString, PropChoice:
		v := p.Str()
		ar.String(&v)
		if loading {
			p.Value = cty.StringVal(v)
		}
	default:
		ar.Fail(fmt.Errorf("%w: property '%s' has unknown type %d", ErrInvalidProperty, p.Name, typ))
	}
	archive.Strings(ar, &p.Choices)
	return ar.Err()
}

// SerializeProperties reads or writes a property list.
func SerializeProperties(ar archive.Archive, props *[]UserProperty) error {
	n := len(*props)
	ar.Len(&n)
	if ar.IsLoading() {
		*props = nil
		if n > 0 {
			*props = make([]UserProperty, n)
		}
	}
	for i := range *props {
		if err := (*props)[i].Serialize(ar); err != nil {
			return err
		}
	}
	return ar.Err()
}

// CloneProperties deep-copies a property list.
func CloneProperties(props []UserProperty) []UserProperty {
	if props == nil {
		return nil
	}
	out := make([]UserProperty, len(props))
	for i, p := range props {
		out[i] = p.Clone()
	}
	return out
}
