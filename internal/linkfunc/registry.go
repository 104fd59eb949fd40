package linkfunc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotStarted is returned when a function is added before Startup.
	ErrNotStarted = errors.New("link function registry not started")
	// ErrDuplicateFunction is returned when a name or type tag is reused.
	ErrDuplicateFunction = errors.New("duplicate link function")
)

// Type is the stable integer tag identifying a link function.
type Type int32

// TypeInvalid is returned for lookup misses.
const TypeInvalid Type = -1

// Built-in tags. These values are persisted and must never change.
const (
	TypeNull Type = iota
	TypeLinear
	TypeQuadratic
	TypeCubic
	TypeSquareRoot
	TypeNegate
	TypeInverse
	TypeOneClamp
	TypeConstant
	TypeCorrective
	TypeClampedLinear
	TypeCustom
	TypePerlinNoise
)

// Built-in names.
const (
	NameNull          = "null"
	NameLinear        = "linear"
	NameQuadratic     = "quadratic"
	NameCubic         = "cubic"
	NameSquareRoot    = "square root"
	NameNegate        = "negate"
	NameInverse       = "inverse"
	NameOneClamp      = "one clamp"
	NameConstant      = "constant"
	NameCorrective    = "corrective"
	NameClampedLinear = "clamped linear"
	NameCustom        = "custom"
	NamePerlinNoise   = "perlin noise"
)

// Param is a named parameter with its default value.
type Param struct {
	Name    string
	Default float32
}

// EvalFunc computes a link function for input x.
type EvalFunc func(x float32, params []float32) float32

// Descriptor describes one registered link function.
type Descriptor struct {
	Name        string
	Type        Type
	Description string
	Params      []Param
	// Corrective functions produce a correction factor instead of a
	// contribution; the node evaluator decides how it is applied.
	Corrective bool
	// Deprecated functions evaluate as null and exist so that old content
	// still loads.
	Deprecated bool
	Eval       EvalFunc
}

// Defaults returns the default value of every parameter, in order.
func (d *Descriptor) Defaults() []float32 {
	out := make([]float32, len(d.Params))
	for i, p := range d.Params {
		out[i] = p.Default
	}
	return out
}

// IsNull reports whether the function contributes nothing.
func (d *Descriptor) IsNull() bool {
	return d.Type == TypeNull || d.Deprecated
}

// Registry is the table of link functions available to a set of graphs.
// It is safe for concurrent lookups; registration is expected at startup.
type Registry struct {
	mu      sync.RWMutex
	started bool
	byName  map[string]*Descriptor
	byType  map[Type]*Descriptor
	next    Type
}

// New returns an empty registry. Call Startup before use.
func New() *Registry {
	return &Registry{}
}

// NewStarted returns a registry with the built-in functions registered.
func NewStarted() *Registry {
	r := New()
	if err := r.Startup(); err != nil {
		panic(fmt.Sprintf("link function startup failed: %v", err))
	}
	return r
}

// Startup registers the built-in functions and the legacy aliases. Calling
// it on a started registry does nothing.
func (r *Registry) Startup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	r.byName = make(map[string]*Descriptor)
	r.byType = make(map[Type]*Descriptor)
	r.next = 0
	r.started = true

	for _, d := range builtins() {
		if err := r.addLocked(d); err != nil {
			r.started = false
			r.byName, r.byType = nil, nil
			return err
		}
	}
	return nil
}

// Shutdown releases every registered function. Lookups miss until the next
// Startup.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false
	r.byName = nil
	r.byType = nil
	r.next = 0
}

// Started reports whether Startup has run since the last Shutdown.
func (r *Registry) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

// AddFunction registers d. The descriptor must not be modified afterward.
func (r *Registry) AddFunction(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(d)
}

// MustAddFunction is AddFunction for init-time registration; it panics on
// error.
func (r *Registry) MustAddFunction(d *Descriptor) {
	if err := r.AddFunction(d); err != nil {
		panic(err)
	}
}

// AddDeprecated registers name as a legacy alias that evaluates as null. The
// alias gets the next free type tag.
func (r *Registry) AddDeprecated(name string) (Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return TypeInvalid, ErrNotStarted
	}
	d := deprecated(name, r.next)
	if err := r.addLocked(d); err != nil {
		return TypeInvalid, err
	}
	return d.Type, nil
}

func (r *Registry) addLocked(d *Descriptor) error {
	if !r.started {
		return ErrNotStarted
	}
	if d == nil || d.Name == "" || d.Eval == nil {
		return fmt.Errorf("link function descriptor must have a name and an eval func")
	}
	if _, ok := r.byName[d.Name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicateFunction, d.Name)
	}
	if other, ok := r.byType[d.Type]; ok {
		return fmt.Errorf("%w: type %d already used by %q", ErrDuplicateFunction, d.Type, other.Name)
	}
	r.byName[d.Name] = d
	r.byType[d.Type] = d
	if d.Type >= r.next {
		r.next = d.Type + 1
	}
	return nil
}

// FindByName returns the named function, or nil.
func (r *Registry) FindByName(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// FindByType returns the function with tag t, or nil.
func (r *Registry) FindByType(t Type) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

// FindTypeByName returns the tag of the named function, or TypeInvalid.
func (r *Registry) FindTypeByName(name string) Type {
	if d := r.FindByName(name); d != nil {
		return d.Type
	}
	return TypeInvalid
}

// NextType returns the tag the next generated registration would receive.
func (r *Registry) NextType() Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.next
}

// Functions returns every registered function ordered by tag.
func (r *Registry) Functions() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.byType))
	for _, d := range r.byType {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
