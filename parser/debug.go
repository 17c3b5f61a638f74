package parser

// dumpBeam writes the retained states of a beam to the tracer at debug
// level, mirroring gorgo's lr/earley/debug.go dumpState helper.
func dumpBeam(label string, b interface{ Iterate() []*State }) {
	tracer().Debugf("--- %s ------------------------------------", label)
	for n, st := range b.Iterate() {
		tracer().Debugf("[%2d] score=%v class=%d pending=%d deps=%d",
			n+1, st.ScoreVal, st.LastClass, len(st.Pending), st.Deps.Len())
	}
}
