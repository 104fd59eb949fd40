package compiled

// Values are the per-node driving inputs and last result of one evaluation
// context.
type Values struct {
	Track    float32
	HasTrack bool
	User     float32
	UserOp   ValueOp
	Final    float32
}

// valueSet implements the setters shared by Graph and Instance over a
// values array. Out-of-range indices are ignored.
type valueSet []Values

func (vs valueSet) at(i int32) *Values {
	if i < 0 || int(i) >= len(vs) {
		return nil
	}
	return &vs[i]
}

func (vs valueSet) setUser(i int32, v float32, op ValueOp) {
	if p := vs.at(i); p != nil {
		p.User, p.UserOp = v, op
	}
}

func (vs valueSet) clearUser(i int32) {
	if p := vs.at(i); p != nil {
		p.User, p.UserOp = 0, OpNone
	}
}

func (vs valueSet) setTrack(i int32, v float32) {
	if p := vs.at(i); p != nil {
		p.Track, p.HasTrack = v, true
	}
}

func (vs valueSet) clearTrack(i int32) {
	if p := vs.at(i); p != nil {
		p.Track, p.HasTrack = 0, false
	}
}

func (vs valueSet) final(i int32) float32 {
	if p := vs.at(i); p != nil {
		return p.Final
	}
	return 0
}
