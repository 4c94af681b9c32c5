// Command netinspect loads a sealed network and dumps its static output
// records without running any ticks, in the spirit of dragonfly's
// cmd/inspect_palette (a standalone tool that loads one artifact and
// prints a derived view of it, no server involved).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/trafficlab/aurasim/network/networkio"
	"github.com/trafficlab/aurasim/output"
)

func main() {
	os.Exit(run())
}

func run() int {
	path := flag.String("network", "", "path to a YAML network fixture")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *path == "" {
		log.Error("usage error", "reason", "--network is required")
		return 1
	}

	net, skipped, err := networkio.Load(*path)
	if err != nil {
		log.Error("network load failed", "error", err)
		return 1
	}

	out, err := output.NewWriter(os.Stdout, false)
	if err != nil {
		log.Error("output writer failed", "error", err)
		return 1
	}
	defer out.Close()

	if err := output.WriteNetwork(out, net); err != nil {
		log.Error("output write failed", "error", err)
		return 1
	}

	for _, e := range skipped {
		fmt.Fprintln(os.Stderr, e)
	}
	log.Info("inspected network", "nodes", len(net.Nodes()), "links", len(net.Links()),
		"segments", len(net.Segments()), "lanes", len(net.Lanes()), "skipped", len(skipped))
	return 0
}
