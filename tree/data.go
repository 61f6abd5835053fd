package tree

// Data is the hormone state of one growth unit.
type Data struct {
	Order         int     `json:"order"`
	Age           int     `json:"age"`
	Auxin         float64 `json:"auxin"`
	Strigolactone float64 `json:"strigolactone"`
	Pin           float64 `json:"pin"`
	AuxinFlow     float64 `json:"auxin_flow"` // Net outflow of the last tick
}

// NewData creates the initial state of a unit at the given order.
func NewData(order int, s Settings) Data {
	return Data{
		Order:         order,
		Auxin:         s.InitAuxin,
		Strigolactone: s.InitStrigolactone,
		Pin:           s.InitPin,
	}
}

// AuxinUpdate adds delta to the auxin level, flooring at zero.
func (d *Data) AuxinUpdate(delta float64) {
	d.Auxin = max(d.Auxin+delta, 0)
}

// PinUpdate adds delta to the PIN level, flooring at zero.
func (d *Data) PinUpdate(delta float64) {
	d.Pin = max(d.Pin+delta, 0)
}

// Segment is one subdivision of an internode.
type Segment struct {
	Data Data `json:"data"`
}

// NewSegment creates a segment at the given order.
func NewSegment(order int, s Settings) Segment {
	return Segment{Data: NewData(order, s)}
}
