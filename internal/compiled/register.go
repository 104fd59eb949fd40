package compiled

// Register is the per-instance interpolation state of one node. The zero
// value is idle and contributes nothing.
type Register struct {
	Value float32

	Start   float32
	End     float32
	NextEnd float32

	InverseDuration     float32 // 0 means the blend completes at once
	NextInverseDuration float32

	InterpStartTime float32

	// Scratch holds the previous first-input value of a Delta node.
	Scratch float32

	FirstRegOp    ValueOp
	NextRegOp     NextRegOp
	Interpolating bool
}

func inverseDuration(seconds float32) float32 {
	if seconds <= 0 {
		return 0
	}
	return 1 / seconds
}

// Active reports whether the register takes part in evaluation.
func (r *Register) Active() bool {
	return r.FirstRegOp != OpNone || r.NextRegOp != NextNone
}

// Request queues a blend toward value over duration seconds. It is promoted
// on the next Advance when the register is idle, or when the running blend
// completes. A second request before promotion replaces the first.
func (r *Register) Request(value float32, op NextRegOp, duration float32) {
	r.NextEnd = value
	r.NextInverseDuration = inverseDuration(duration)
	r.NextRegOp = op
}

// BeginBlend starts a blend from start to end at time, combined with the
// node value through op.
func (r *Register) BeginBlend(start, end, inverseDuration float32, op ValueOp, time float32) {
	r.Start = start
	r.End = end
	r.Value = start
	r.InverseDuration = inverseDuration
	r.InterpStartTime = time
	r.FirstRegOp = op
	r.Interpolating = true
}

// Release stops the register contributing. Delta scratch is kept.
func (r *Register) Release() {
	scratch := r.Scratch
	*r = Register{Scratch: scratch}
}

// Advance moves the register to time and returns its value. computed is the
// node value before the register is applied and previous is the node's last
// final value; they choose a start for promoted blends so that the visible
// value does not jump.
func (r *Register) Advance(time, computed, previous float32) float32 {
	if r.NextRegOp != NextNone && !r.Interpolating {
		r.promote(time, computed, previous)
	}
	if !r.Interpolating {
		return r.Value
	}

	t := float32(1)
	if r.InverseDuration > 0 {
		t = min(max((time-r.InterpStartTime)*r.InverseDuration, 0), 1)
	}
	if t < 1 {
		r.Value = r.Start + (r.End-r.Start)*t
		return r.Value
	}

	r.Value = r.End
	r.Interpolating = false
	if r.NextRegOp != NextNone {
		visible := r.FirstRegOp.apply(computed, r.Value)
		r.promote(time, computed, visible)
	}
	return r.Value
}

func (r *Register) promote(time, computed, previous float32) {
	op := GetUserOpForRegOp(r.NextRegOp)
	var start float32
	switch op {
	case OpAdd:
		start = previous - computed
	case OpMultiply:
		start = 1
		if computed != 0 {
			start = previous / computed
		}
	default:
		start = previous
	}
	r.BeginBlend(start, r.NextEnd, r.NextInverseDuration, op, time)
	r.NextEnd = 0
	r.NextInverseDuration = 0
	r.NextRegOp = NextNone
}
