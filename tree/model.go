package tree

// Model computes hormone flux contributions from a unit's state.
// Implementations must be deterministic and free of side effects; the
// parallel stepper calls them from several goroutines at once.
type Model interface {
	// Outflow is the (usually negative) flux leaving a unit.
	Outflow(d Data) float64
	// Inflow is the flux a unit receives from the neighbour d.
	Inflow(d Data) float64
	Decay(d Data, s Settings) float64
	Production(d Data, gain float64) float64
	SegmentProduction(d Data, s Settings) float64
	PinProduction(d Data, s Settings) float64
	PinDecay(d Data, s Settings) float64
}

// ChildActivator is an optional Model capability. When implemented, a
// dormant bud flips to active during the tick if its parent signals it.
type ChildActivator interface {
	ActivatesChild(parent *Node) bool
}
