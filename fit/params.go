// Package fit searches hormone parameters so that the relaxed main-stem
// auxin profile of a tree matches a measured one, using CMA-ES.
package fit

import (
	"github.com/pthm-cable/budsim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "transport", Path: "hormone.transport", Min: 0.05, Max: 2.0},
			{Name: "decay", Path: "settings.decay", Min: 0.01, Max: 0.5},
			{Name: "active_gain", Path: "settings.active_gain", Min: 0.1, Max: 2.0},
			{Name: "dormant_gain", Path: "settings.dormant_gain", Min: 0, Max: 0.5},
			{Name: "pin_decay", Path: "settings.pin_decay", Min: 0.01, Max: 0.2},
			{Name: "pin_max_rate", Path: "settings.pin_production.max_rate", Min: 0.01, Max: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Hormone.Transport = clamped[0]
	cfg.Settings.Decay = clamped[1]
	cfg.Settings.ActiveGain = clamped[2]
	cfg.Settings.DormantGain = clamped[3]
	cfg.Settings.PinDecay = clamped[4]
	cfg.Settings.PinProduction.MaxRate = clamped[5]
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Hormone.Transport,
		cfg.Settings.Decay,
		cfg.Settings.ActiveGain,
		cfg.Settings.DormantGain,
		cfg.Settings.PinDecay,
		cfg.Settings.PinProduction.MaxRate,
	}
}
