package config

import (
	"sort"

	"github.com/san-kum/tovsim/internal/eos"
)

func withEOS(e EOSConfig, star StarConfig) *Config {
	cfg := DefaultConfig()
	cfg.EOS = e
	cfg.Star = star
	return cfg
}

var Presets = map[string]map[string]*Config{
	eos.TypePolytrope: {
		"reference": withEOS(
			EOSConfig{Type: eos.TypePolytrope, K: 100, Gamma: 2},
			StarConfig{CentralDensity: 1.28e-3},
		),
		"max_mass": withEOS(
			EOSConfig{Type: eos.TypePolytrope, K: 100, Gamma: 2},
			StarConfig{CentralDensity: 3.2e-3},
		),
		"soft": withEOS(
			EOSConfig{Type: eos.TypePolytrope, K: 30, Gamma: 1.8},
			StarConfig{CentralDensity: 2e-3},
		),
	},
	eos.TypePiecewisePolytrope: {
		"two_phase": withEOS(
			EOSConfig{Type: eos.TypePiecewisePolytrope, K: 100, Boundaries: []float64{1e-3}, Gammas: []float64{2, 2.5}},
			StarConfig{CentralDensity: 2e-3},
		),
		"three_phase": withEOS(
			EOSConfig{Type: eos.TypePiecewisePolytrope, K: 100, Boundaries: []float64{5e-4, 2e-3}, Gammas: []float64{2, 2.4, 2.2}},
			StarConfig{CentralDensity: 2.5e-3},
		),
	},
	eos.TypeConstantDensity: {
		"incompressible": withEOS(
			EOSConfig{Type: eos.TypeConstantDensity, Epsilon0: 1},
			StarConfig{CentralPressure: 0.1},
		),
	},
}

func GetPreset(eosType, preset string) *Config {
	typePresets, ok := Presets[eosType]
	if !ok {
		return nil
	}
	cfg, ok := typePresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(eosType string) []string {
	typePresets, ok := Presets[eosType]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(typePresets))
	for name := range typePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
