// Package hormone provides the default auxin/PIN flux functions used by
// the growth engine.
//
// Transport is PIN mediated: a unit exports auxin in proportion to both its
// auxin and its PIN level, and the neighbour receiving that stream gains
// exactly what was exported. PIN itself is induced by auxin with
// saturating kinetics and turns over at a constant rate.
package hormone

import "github.com/pthm-cable/budsim/tree"

// DefaultTransport is the PIN transport coefficient of Default.
const DefaultTransport = 0.5

// Model is a stateless flux model with a single transport coefficient.
type Model struct {
	Transport float64 `yaml:"transport"`
}

// Default returns the reference model.
func Default() Model {
	return Model{Transport: DefaultTransport}
}

var _ tree.Model = Model{}

// Outflow is the auxin leaving d, as a negative rate.
func (m Model) Outflow(d tree.Data) float64 {
	return -m.Transport * d.Pin * d.Auxin
}

// Inflow is the auxin arriving from the neighbour d.
func (m Model) Inflow(d tree.Data) float64 {
	return m.Transport * d.Pin * d.Auxin
}

func (m Model) Decay(d tree.Data, s tree.Settings) float64 {
	return -s.Decay * d.Auxin
}

func (m Model) Production(_ tree.Data, gain float64) float64 {
	return gain
}

func (m Model) SegmentProduction(_ tree.Data, s tree.Settings) float64 {
	return s.SegmentGain
}

// PinProduction follows Michaelis-Menten kinetics in auxin.
func (m Model) PinProduction(d tree.Data, s tree.Settings) float64 {
	p := s.PinProduction
	if p.HalfSaturation+d.Auxin <= 0 {
		return 0
	}
	return p.MaxRate * d.Auxin / (p.HalfSaturation + d.Auxin)
}

func (m Model) PinDecay(d tree.Data, s tree.Settings) float64 {
	return -s.PinDecay * d.Pin
}
