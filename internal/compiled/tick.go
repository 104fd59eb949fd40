package compiled

import (
	"math"

	"github.com/vk/facegraph/internal/facegraph"
)

var (
	negInf = float32(math.Inf(-1))
	posInf = float32(math.Inf(1))
)

// seed returns the identity element of op. Max and Min seed at -Inf and
// +Inf rather than 1, so the fold yields the largest or smallest input.
func seed(op facegraph.InputOperation) float32 {
	switch op {
	case facegraph.OpMultiply:
		return 1
	case facegraph.OpMax:
		return negInf
	case facegraph.OpMin:
		return posInf
	}
	return 0
}

func fold(op facegraph.InputOperation, acc, v float32) float32 {
	switch op {
	case facegraph.OpMultiply:
		return acc * v
	case facegraph.OpMax:
		return max(acc, v)
	case facegraph.OpMin:
		return min(acc, v)
	}
	return acc + v
}

// tick evaluates every node in array order. Links only read lower indices,
// so each source value read is already this frame's.
func (g *Graph) tick(values valueSet, regs []Register, time float32, tickedBefore bool) {
	for i := range g.nodes {
		var reg *Register
		if i < len(regs) {
			reg = &regs[i]
		}
		values[i].Final = g.evalNode(int32(i), values, reg, time, tickedBefore)
	}
}

func (g *Graph) evalNode(i int32, values valueSet, reg *Register, time float32, tickedBefore bool) float32 {
	n := &g.nodes[i]
	v := &values[i]
	links := g.links[n.FirstLink : n.FirstLink+n.NumLinks]

	var acc float32
	contributed := false
	corrected := false
	var correction float32

	switch n.Type {
	case NodeCurrentTime:
		return time
	case NodeDelta:
		if len(links) > 0 {
			l := &links[0]
			cur := l.eval(values[l.Source].Final)
			if reg != nil {
				if tickedBefore {
					acc = cur - reg.Scratch
				}
				reg.Scratch = cur
			}
			contributed = true
		}
	default:
		acc = seed(n.InputOp)
		for li := range links {
			l := &links[li]
			src := values[l.Source].Final
			if l.Corrective() {
				sn := &g.nodes[l.Source]
				norm := src * sn.InvMax
				if src < 0 {
					norm = src * sn.InvMin
				}
				correction += norm * l.eval(src)
				corrected = true
				continue
			}
			acc = fold(n.InputOp, acc, l.eval(src))
			contributed = true
		}
		if !contributed {
			acc = 0
		}
	}

	if v.HasTrack {
		acc += v.Track
		contributed = true
	}
	if v.UserOp != OpNone {
		acc = v.UserOp.apply(acc, v.User)
		contributed = true
	}
	if corrected && contributed {
		acc *= 1 - min(correction, 1)
	}

	if reg != nil && reg.Active() {
		if !contributed {
			acc = 0
		}
		r := reg.Advance(time, n.clamp(acc), v.Final)
		return n.clamp(reg.FirstRegOp.apply(n.clamp(acc), r))
	}
	if !contributed {
		return 0
	}
	return n.clamp(acc)
}
