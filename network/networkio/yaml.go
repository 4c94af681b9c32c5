// Package networkio is bootstrap scaffolding, not the production network
// loader (§1 explicitly puts "road-network loading from database or XML"
// out of the core's scope). It lets tests and the netinspect CLI build a
// sealed network.Network from a small YAML fixture instead of standing up
// a full XML/DSN loader. Uses gopkg.in/yaml.v2, present in dragonfly's
// go.mod as an indirect dependency of its own config stack.
package networkio

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/trafficlab/aurasim/network"
)

// Fixture is the on-disk shape of a YAML network fixture.
type Fixture struct {
	Nodes []struct {
		ID int64 `yaml:"id"`
		X  int32 `yaml:"x"`
		Y  int32 `yaml:"y"`
	} `yaml:"nodes"`
	Links []struct {
		ID       int64   `yaml:"id"`
		From     int64   `yaml:"from"`
		To       int64   `yaml:"to"`
		Segments []int64 `yaml:"segments"`
	} `yaml:"links"`
	Segments []struct {
		ID       int64   `yaml:"id"`
		LinkID   int64   `yaml:"link"`
		LengthCM int64   `yaml:"length_cm"`
		Lanes    []int64 `yaml:"lanes"`
	} `yaml:"segments"`
	Lanes []struct {
		ID        int64    `yaml:"id"`
		SegmentID int64    `yaml:"segment"`
		Index     int      `yaml:"index"`
		LengthCM  int64    `yaml:"length_cm"`
		Rules     []string `yaml:"rules"`
	} `yaml:"lanes"`
	LaneConnectors []struct {
		ID   int64 `yaml:"id"`
		From int64 `yaml:"from_lane"`
		To   int64 `yaml:"to_lane"`
	} `yaml:"lane_connectors"`
}

var ruleNames = map[string]network.LaneRule{
	"vehicle":              network.RuleVehicle,
	"bicycle":              network.RuleBicycle,
	"pedestrian":           network.RulePedestrian,
	"bus":                  network.RuleBus,
	"hov":                  network.RuleHOV,
	"can_go_straight":      network.RuleCanGoStraight,
	"can_go_left":          network.RuleCanGoLeft,
	"can_go_right":         network.RuleCanGoRight,
	"can_change_lane_left": network.RuleCanChangeLaneLeft,
	"can_change_lane_right": network.RuleCanChangeLaneRight,
	"can_turn_on_red":      network.RuleCanTurnOnRed,
	"can_stop":             network.RuleCanStop,
	"can_park":             network.RuleCanPark,
	"is_road_shoulder":     network.RuleIsRoadShoulder,
	"u_turn_allowed":       network.RuleUTurnAllowed,
}

// Load reads a YAML fixture at path, builds a network.Network from it, and
// seals it. Any network-consistency errors encountered during Seal are
// returned alongside the network, per §7's "offending element skipped,
// simulation continues" policy.
func Load(path string) (*network.Network, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, nil, err
	}
	n := network.New()
	for _, v := range fx.Nodes {
		n.AddNode(network.Node{ID: v.ID, X: v.X, Y: v.Y})
	}
	for _, v := range fx.Links {
		n.AddLink(network.Link{ID: v.ID, FromNode: v.From, ToNode: v.To, Segments: v.Segments})
	}
	for _, v := range fx.Segments {
		n.AddSegment(network.Segment{ID: v.ID, LinkID: v.LinkID, LengthCM: v.LengthCM, Lanes: v.Lanes})
	}
	for _, v := range fx.Lanes {
		var rules network.LaneRules
		for _, name := range v.Rules {
			if r, ok := ruleNames[name]; ok {
				rules = rules.With(r)
			}
		}
		n.AddLane(network.Lane{ID: v.ID, SegmentID: v.SegmentID, Index: v.Index, LengthCM: v.LengthCM, Rules: rules})
	}
	for _, v := range fx.LaneConnectors {
		n.AddLaneConnector(network.LaneConnector{ID: v.ID, FromLane: v.From, ToLane: v.To})
	}
	skipped := n.Seal()
	return n, skipped, nil
}
