package aura

import (
	"testing"

	"github.com/trafficlab/aurasim/kernel/config"
)

func TestNewBackendSelectsByConfig(t *testing.T) {
	cases := []struct {
		backend config.AuraBackend
		want    string
	}{
		{config.AuraGrid, "*aura.Grid"},
		{config.AuraRTree, "*aura.RStarTree"},
		{config.AuraSimtree, "*aura.SimTree"},
	}
	for _, c := range cases {
		b, err := NewBackend(config.Config{AuraBackend: c.backend}, [4]int32{0, 0, 1000, 1000})
		if err != nil {
			t.Fatalf("NewBackend(%s): %v", c.backend, err)
		}
		switch c.backend {
		case config.AuraGrid:
			if _, ok := b.(*Grid); !ok {
				t.Fatalf("backend for %s is %T, want *Grid", c.backend, b)
			}
		case config.AuraRTree:
			if _, ok := b.(*RStarTree); !ok {
				t.Fatalf("backend for %s is %T, want *RStarTree", c.backend, b)
			}
		case config.AuraSimtree:
			if _, ok := b.(*SimTree); !ok {
				t.Fatalf("backend for %s is %T, want *SimTree", c.backend, b)
			}
		}
	}
}

func TestNewBackendRejectsUnknown(t *testing.T) {
	_, err := NewBackend(config.Config{AuraBackend: "bogus"}, [4]int32{})
	if err == nil {
		t.Fatal("NewBackend accepted an unknown aura_backend value")
	}
}
