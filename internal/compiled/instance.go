package compiled

// Instance is one evaluation context over a shared Graph. It owns its
// driving values and registers; the Graph is only read. Different Instances
// may tick the same Graph concurrently, but a single Instance is not safe
// for concurrent use.
type Instance struct {
	graph        *Graph
	values       valueSet
	regs         []Register
	tickedBefore bool
}

// NewInstance returns an instance of g with idle registers.
func NewInstance(g *Graph) *Instance {
	return &Instance{
		graph:  g,
		values: make(valueSet, g.NumNodes()),
		regs:   g.NewRegisters(),
	}
}

// Graph returns the shared graph.
func (in *Instance) Graph() *Graph { return in.graph }

// Tick evaluates the graph at time. The first call seeds Delta nodes.
func (in *Instance) Tick(time float32) {
	in.graph.tick(in.values, in.regs, time, in.tickedBefore)
	in.tickedBefore = true
}

// Reset clears values and registers so the next Tick behaves like the first.
func (in *Instance) Reset() {
	clear(in.values)
	clear(in.regs)
	in.tickedBefore = false
}

// Register returns the register of node i, or nil.
func (in *Instance) Register(i int32) *Register {
	if i < 0 || int(i) >= len(in.regs) {
		return nil
	}
	return &in.regs[i]
}

// Blend queues a register blend of node i toward value over seconds.
func (in *Instance) Blend(i int32, value float32, op ValueOp, seconds float32) bool {
	r := in.Register(i)
	if r == nil {
		return false
	}
	r.Request(value, RegOpForValueOp(op), seconds)
	return true
}

// SetUserValue sets the user value of node i and how it is applied.
func (in *Instance) SetUserValue(i int32, v float32, op ValueOp) { in.values.setUser(i, v, op) }

// ClearUserValue removes the user value of node i.
func (in *Instance) ClearUserValue(i int32) { in.values.clearUser(i) }

// SetTrackValue sets the animation track contribution of node i.
func (in *Instance) SetTrackValue(i int32, v float32) { in.values.setTrack(i, v) }

// ClearTrackValue removes the track contribution of node i.
func (in *Instance) ClearTrackValue(i int32) { in.values.clearTrack(i) }

// FinalValue returns the last value computed for node i, or 0.
func (in *Instance) FinalValue(i int32) float32 { return in.values.final(i) }
