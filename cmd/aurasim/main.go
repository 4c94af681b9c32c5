// Command aurasim runs the traffic microsimulation kernel (§6 CLI
// contract: `aurasim --config <path>`, exit 0 on normal completion,
// non-zero on configuration error). Agent and signal population is left
// to loaders outside the core's scope (§1 "road-network loading from
// database or XML", "specific driver/pedestrian behavioral models"); this
// entry point wires the network, the aura manager, and the WorkGroup, and
// runs whatever has been assigned to it before Run is called — with zero
// pre-assigned entities this reproduces the "empty run" scenario (§8.1).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/trafficlab/aurasim/aura"
	"github.com/trafficlab/aurasim/kernel"
	"github.com/trafficlab/aurasim/kernel/config"
	"github.com/trafficlab/aurasim/kernel/message"
	"github.com/trafficlab/aurasim/network"
	"github.com/trafficlab/aurasim/network/networkio"
	"github.com/trafficlab/aurasim/output"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the run's TOML configuration document")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *configPath == "" {
		log.Error("configuration error", "reason", "--config is required")
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration error", "error", err)
		return 1
	}

	net, skipped, err := networkio.Load(cfg.NetworkSource)
	if err != nil {
		log.Error("configuration error", "reason", "network load failed", "error", err)
		return 1
	}
	for _, e := range skipped {
		log.Warn("network-consistency error", "error", e)
	}

	backend, err := aura.NewBackend(cfg, networkBounds(net))
	if err != nil {
		log.Error("configuration error", "error", err)
		return 1
	}
	auraMgr := aura.NewManager(backend, func() []aura.Agent { return nil })
	incidentMgr := network.NewIncidentManager(net, nil)

	bus := message.New()
	wgOpts := []kernel.Option{kernel.WithAura(auraMgr), kernel.WithIncidentHook(incidentMgr)}
	if cfg.SingleThreaded {
		wgOpts = append(wgOpts, kernel.WithSingleThreaded())
	}
	wg := kernel.NewWorkGroup(cfg, cfg.Person.Workers, int64(cfg.Person.GranularityMS), log, bus, wgOpts...)
	wg.AddWorkerGroup(cfg.Signal.Workers, int64(cfg.Signal.GranularityMS))
	wg.AddWorkerGroup(cfg.Communication.Workers, int64(cfg.Communication.GranularityMS))

	out, err := buildOutputWriter(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		return 1
	}

	if err := out.WriteSimulationHeader(wg.RunID().String(), int64(cfg.BaseGranularityMS)); err != nil {
		log.Error("output write failed", "error", err)
		return 1
	}
	if err := output.WriteNetwork(out, net); err != nil {
		log.Error("output write failed", "error", err)
		return 1
	}

	stats, err := wg.Run(context.Background())
	if err != nil {
		log.Error("runtime invariant violation", "error", err)
		return 1
	}
	if err := out.Close(); err != nil {
		log.Error("output write failed", "error", err)
		return 1
	}

	log.Info("run complete",
		"ticks", stats.Ticks,
		"agents-skipped", stats.NumAgentsSkipped,
		"messages-dropped", stats.MessagesDropped,
		"network-errors-skipped", len(skipped),
	)
	return 0
}

func buildOutputWriter(cfg config.Config) (*output.Writer, error) {
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return output.NewWriter(os.Stdout, cfg.OutputCompression)
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open output path: %w", err)
	}
	return output.NewWriter(f, cfg.OutputCompression)
}

// networkBounds derives a bounding box from the network's node coordinates,
// for the simtree aura backend's static partition.
func networkBounds(net *network.Network) [4]int32 {
	var x1, y1, x2, y2 int32
	first := true
	for _, n := range net.Nodes() {
		if first {
			x1, y1, x2, y2 = n.X, n.Y, n.X, n.Y
			first = false
			continue
		}
		if n.X < x1 {
			x1 = n.X
		}
		if n.X > x2 {
			x2 = n.X
		}
		if n.Y < y1 {
			y1 = n.Y
		}
		if n.Y > y2 {
			y2 = n.Y
		}
	}
	return [4]int32{x1, y1, x2, y2}
}
