package aura

import (
	"fmt"

	"github.com/trafficlab/aurasim/kernel/config"
)

// NewBackend builds the Backend selected by cfg.AuraBackend (§4.H "selected
// at init"). bounds is only consulted by the simtree backend, which needs a
// static bounding box to partition; callers typically derive it from the
// sealed network's node coordinates.
func NewBackend(cfg config.Config, bounds [4]int32) (Backend, error) {
	switch cfg.AuraBackend {
	case config.AuraGrid, "":
		return NewGrid(5000), nil
	case config.AuraRTree:
		return NewRStarTree(), nil
	case config.AuraSimtree:
		return NewSimTree(bounds[0], bounds[1], bounds[2], bounds[3], 10), nil
	default:
		return nil, fmt.Errorf("aura: unknown backend %q", cfg.AuraBackend)
	}
}
