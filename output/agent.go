package output

// AgentView is the narrow view of a moving entity the output package needs
// to emit a per-tick agent record (§6 "per-tick agent records for moving
// entities (position, role, lane)"). Defined consumer-side so this
// package never imports agent, matching the narrow-interface convention
// used throughout the kernel.
type AgentView interface {
	ID() int64
	PositionCM() (int32, int32)
	LaneID() int64
	OffsetCM() int64
	RoleKind() string
}

// WriteAgent emits one per-tick record for a moving entity.
func (w *Writer) WriteAgent(frame int64, a AgentView) error {
	x, y := a.PositionCM()
	return w.Write(Record{Kind: "agent", Frame: frame, ID: a.ID(), Fields: []Field{
		F("x", x),
		F("y", y),
		F("lane", a.LaneID()),
		F("offset-cm", a.OffsetCM()),
		F("role", a.RoleKind()),
	}})
}
