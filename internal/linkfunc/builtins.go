package linkfunc

import "math"

// builtins returns the fixed function set registered by Startup, including
// the legacy aliases rerouted to null.
func builtins() []*Descriptor {
	return []*Descriptor{
		{
			Name:        NameNull,
			Type:        TypeNull,
			Description: "Always zero.",
			Eval:        evalNull,
		},
		{
			Name:        NameLinear,
			Type:        TypeLinear,
			Description: "y = m*x + b",
			Params:      []Param{{Name: "m", Default: 1}, {Name: "b", Default: 0}},
			Eval:        evalLinear,
		},
		{
			Name:        NameQuadratic,
			Type:        TypeQuadratic,
			Description: "y = sign(x)*a*x^2",
			Params:      []Param{{Name: "a", Default: 1}},
			Eval:        evalQuadratic,
		},
		{
			Name:        NameCubic,
			Type:        TypeCubic,
			Description: "y = a*x^3",
			Params:      []Param{{Name: "a", Default: 1}},
			Eval:        evalCubic,
		},
		{
			Name:        NameSquareRoot,
			Type:        TypeSquareRoot,
			Description: "y = sign(x)*a*sqrt(|x|)",
			Params:      []Param{{Name: "a", Default: 1}},
			Eval:        evalSquareRoot,
		},
		{
			Name:        NameNegate,
			Type:        TypeNegate,
			Description: "y = -x",
			Eval:        evalNegate,
		},
		{
			Name:        NameInverse,
			Type:        TypeInverse,
			Description: "y = 1/x, zero at x = 0",
			Eval:        evalInverse,
		},
		{
			Name:        NameOneClamp,
			Type:        TypeOneClamp,
			Description: "y = 1 for x <= 1, else 1/x",
			Eval:        evalOneClamp,
		},
		{
			Name:        NameConstant,
			Type:        TypeConstant,
			Description: "y = c",
			Params:      []Param{{Name: "c", Default: 0}},
			Eval:        evalConstant,
		},
		{
			Name:        NameCorrective,
			Type:        TypeCorrective,
			Description: "Softens the target by the normalized source value.",
			Params:      []Param{{Name: "correction factor", Default: 1}},
			Corrective:  true,
			Eval:        evalCorrective,
		},
		{
			Name:        NameClampedLinear,
			Type:        TypeClampedLinear,
			Description: "y = cy + m*(x - cx), clamped to cy on one side of cx",
			Params: []Param{
				{Name: "m", Default: 1},
				{Name: "clamp x", Default: 0},
				{Name: "clamp y", Default: 0},
				{Name: "clamp dir", Default: -1},
			},
			Eval: evalClampedLinear,
		},
		deprecated(NameCustom, TypeCustom),
		deprecated(NamePerlinNoise, TypePerlinNoise),
	}
}

func deprecated(name string, t Type) *Descriptor {
	return &Descriptor{
		Name:        name,
		Type:        t,
		Description: "Removed function kept for old content; always zero.",
		Deprecated:  true,
		Eval:        evalNull,
	}
}

func evalNull(float32, []float32) float32 { return 0 }

func evalLinear(x float32, p []float32) float32 {
	switch {
	case len(p) >= 2:
		return p[0]*x + p[1]
	case len(p) == 1:
		return p[0] * x
	default:
		return x
	}
}

func evalQuadratic(x float32, p []float32) float32 {
	a := param(p, 0, 1)
	y := a * x * x
	if x < 0 {
		return -y
	}
	return y
}

func evalCubic(x float32, p []float32) float32 {
	return param(p, 0, 1) * x * x * x
}

func evalSquareRoot(x float32, p []float32) float32 {
	if x == 0 {
		return 0
	}
	a := param(p, 0, 1)
	y := a * float32(math.Sqrt(math.Abs(float64(x))))
	if x < 0 {
		return -y
	}
	return y
}

func evalNegate(x float32, _ []float32) float32 { return -x }

func evalInverse(x float32, _ []float32) float32 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

func evalOneClamp(x float32, _ []float32) float32 {
	if x <= 1 {
		return 1
	}
	return 1 / x
}

func evalConstant(_ float32, p []float32) float32 {
	return param(p, 0, 0)
}

func evalCorrective(_ float32, p []float32) float32 {
	return param(p, 0, 1)
}

func evalClampedLinear(x float32, p []float32) float32 {
	switch {
	case len(p) >= 4:
		slope, cx, cy, dir := p[0], p[1], p[2], p[3]
		if dir < 0 {
			if x < cx {
				return cy
			}
		} else if x > cx {
			return cy
		}
		return cy + slope*(x-cx)
	case len(p) >= 1:
		if x > 0 {
			return x * p[0]
		}
		return 0
	default:
		return x
	}
}

func param(p []float32, i int, def float32) float32 {
	if i < len(p) {
		return p[i]
	}
	return def
}
