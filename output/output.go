// Package output implements the textual event record writer (§6): one
// line per event, `(kind, frame, id, {key:value, ...})`, with the static
// network section (node/link/segment/lane/lane-connector/turning-group/
// turning-path/conflict/bus-stop) dumped once after sealing and closed by
// a trailing ROADNETWORK_DONE marker, modeled on SimMobility's
// NetworkPrinter (original_source/dev/Basic/shared/conf/NetworkPrinter.cpp,
// §9 supplemented feature 2). Optional zstd compression of the stream is
// available via github.com/klauspost/compress, the same choice dragonfly makes for
// wire/output compression.
package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/trafficlab/aurasim/network"
)

// Record is one output event: a kind, the tick ("frame") it belongs to, an
// id, and an ordered set of key:value fields. Fields keep insertion order
// so static-dump output is reproducible byte-for-byte across runs.
type Record struct {
	Kind   string
	Frame  int64
	ID     int64
	Fields []Field
}

// Field is one key:value pair within a Record.
type Field struct {
	Key   string
	Value string
}

// F is a convenience constructor for a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: fmt.Sprint(value)}
}

// Writer serialises Records to an underlying stream, one per line, in the
// `kind frame=.. id=.. key=value ...` textual format (§6).
type Writer struct {
	w       io.Writer
	bw      *bufio.Writer
	zw      *zstd.Encoder
	closeFn func() error
}

// NewWriter wraps dst for textual output. When compress is true, writes
// are passed through a zstd encoder (github.com/klauspost/compress/zstd)
// before reaching dst.
func NewWriter(dst io.Writer, compress bool) (*Writer, error) {
	if !compress {
		bw := bufio.NewWriter(dst)
		return &Writer{w: bw, bw: bw, closeFn: bw.Flush}, nil
	}
	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return nil, fmt.Errorf("output: build zstd encoder: %w", err)
	}
	bw := bufio.NewWriter(zw)
	return &Writer{w: bw, bw: bw, zw: zw, closeFn: func() error {
		if err := bw.Flush(); err != nil {
			return err
		}
		return zw.Close()
	}}, nil
}

// Close flushes any buffered output (and the zstd frame trailer, if
// compression is enabled).
func (w *Writer) Close() error { return w.closeFn() }

// Write serialises one Record as a single line.
func (w *Writer) Write(r Record) error {
	if _, err := fmt.Fprintf(w.bw, "%s frame=%d id=%d", r.Kind, r.Frame, r.ID); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if _, err := fmt.Fprintf(w.bw, " %s=%s", f.Key, f.Value); err != nil {
			return err
		}
	}
	_, err := w.bw.WriteString("\n")
	return err
}

// WriteSimulationHeader emits the single `simulation` record (§6), always
// the first line of output.
func (w *Writer) WriteSimulationHeader(runID string, frameTimeMS int64) error {
	return w.Write(Record{Kind: "simulation", Frame: 0, ID: 0, Fields: []Field{
		F("run-id", runID),
		F("frame-time-ms", frameTimeMS),
	}})
}

// WriteNetwork dumps every static network element once, in ascending id
// order per kind for reproducibility, followed by the ROADNETWORK_DONE
// marker (§6, §9 supplemented feature 2).
func WriteNetwork(w *Writer, net *network.Network) error {
	if err := writeSorted(w, net.Nodes(), "node", func(n *network.Node) []Field {
		return []Field{F("x", n.X), F("y", n.Y)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.Links(), "link", func(l *network.Link) []Field {
		return []Field{F("from", l.FromNode), F("to", l.ToNode), F("num-segments", len(l.Segments))}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.Segments(), "segment", func(s *network.Segment) []Field {
		return []Field{F("link", s.LinkID), F("length-cm", s.LengthCM), F("num-lanes", len(s.Lanes))}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.Lanes(), "lane", func(l *network.Lane) []Field {
		return []Field{F("segment", l.SegmentID), F("index", l.Index), F("length-cm", l.LengthCM), F("rules", uint32(l.Rules))}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.LaneConnectors(), "lane-connector", func(c *network.LaneConnector) []Field {
		return []Field{F("from-lane", c.FromLane), F("to-lane", c.ToLane)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.TurningGroups(), "turning-group", func(g *network.TurningGroup) []Field {
		return []Field{F("node", g.NodeID), F("from-segment", g.FromSegment)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.TurningPaths(), "turning-path", func(p *network.TurningPath) []Field {
		return []Field{F("group", p.GroupID), F("from-lane", p.FromLane), F("to-lane", p.ToLane)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.TurningConflicts(), "conflict", func(c *network.TurningConflict) []Field {
		return []Field{F("path-a", c.PathA), F("path-b", c.PathB)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.Crossings(), "crossing", func(c *network.Crossing) []Field {
		return []Field{F("node", c.NodeID)}
	}); err != nil {
		return err
	}
	if err := writeSorted(w, net.BusStops(), "bus-stop", func(s *network.BusStop) []Field {
		return []Field{F("segment", s.SegmentID), F("offset-cm", s.OffsetCM)}
	}); err != nil {
		return err
	}
	return w.Write(Record{Kind: "ROADNETWORK_DONE", Frame: 0, ID: 0})
}

func writeSorted[T any](w *Writer, m map[int64]*T, kind string, fields func(*T) []Field) error {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := w.Write(Record{Kind: kind, Frame: 0, ID: id, Fields: fields(m[id])}); err != nil {
			return err
		}
	}
	return nil
}
