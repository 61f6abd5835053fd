package tree

import "fmt"

// PinProduction parameterises auxin-induced PIN synthesis.
type PinProduction struct {
	HalfSaturation float64 `yaml:"half_saturation" json:"half_saturation"` // Auxin level giving half the max rate
	MaxRate        float64 `yaml:"max_rate" json:"max_rate"`               // Saturated production per unit time
}

// Settings holds the hormone and growth parameters of one tree.
// A Tree and each of its nodes carry their own copy; changing conditions
// means building a new value and passing it to Tree.NewSettings.
type Settings struct {
	SegmentsAmount    int           `yaml:"segments_amount" json:"segments_amount"` // Internode segment quota
	InitAuxin         float64       `yaml:"init_auxin" json:"init_auxin"`
	InitStrigolactone float64       `yaml:"init_strigolactone" json:"init_strigolactone"`
	InitPin           float64       `yaml:"init_pin" json:"init_pin"`
	DormantGain       float64       `yaml:"dormant_gain" json:"dormant_gain"`
	SegmentGain       float64       `yaml:"segment_gain" json:"segment_gain"`
	ActiveGain        float64       `yaml:"active_gain" json:"active_gain"`
	Decay             float64       `yaml:"decay" json:"decay"`
	PinDecay          float64       `yaml:"pin_decay" json:"pin_decay"`
	PinProduction     PinProduction `yaml:"pin_production" json:"pin_production"`
	DT                float64       `yaml:"dt" json:"dt"`
}

// DefaultSettings returns the reference parameter set.
func DefaultSettings() Settings {
	return Settings{
		SegmentsAmount: 5,
		InitPin:        1.0,
		DormantGain:    0.12,
		ActiveGain:     0.7,
		Decay:          0.155,
		PinDecay:       0.05,
		PinProduction:  PinProduction{HalfSaturation: 1.0, MaxRate: 0.06},
		DT:             0.01,
	}
}

// Validate reports parameter combinations the engine cannot grow with.
func (s Settings) Validate() error {
	if s.SegmentsAmount < 2 {
		return fmt.Errorf("segments_amount must be at least 2, got %d", s.SegmentsAmount)
	}
	if s.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %g", s.DT)
	}
	if s.InitAuxin < 0 || s.InitPin < 0 {
		return fmt.Errorf("initial concentrations must be non-negative")
	}
	return nil
}
