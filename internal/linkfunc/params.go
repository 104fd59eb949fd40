package linkfunc

import "github.com/vk/facegraph/internal/archive"

const parametersVersion = 1

// Parameters is the value list a link passes to its function. An empty list
// means the function's reduced zero-parameter form.
type Parameters []float32

// Serialize reads or writes the parameter list.
func (p *Parameters) Serialize(ar archive.Archive) error {
	ar.Version("LinkFunctionParameters", parametersVersion)
	v := []float32(*p)
	archive.Float32s(ar, &v)
	*p = v
	return ar.Err()
}

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	if len(p) == 0 {
		return nil
	}
	out := make(Parameters, len(p))
	copy(out, p)
	return out
}
