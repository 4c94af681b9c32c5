package role

// waitBusActivity is the dispatcher-inserted pseudo-role preceding a
// transit SubTrip (§4.J supplemented feature 3): it joins the transit
// roster for its line and waits for the "bus-boarded" message a busDriver
// posts once it collects waiting passengers, ending the moment that
// message arrives ("boarded").
type waitBusActivity struct {
	roster  *transitRoster
	line    string
	joined  bool
	boarded bool
}

func newWaitBusActivity(roster *transitRoster, line string) *waitBusActivity {
	return &waitBusActivity{roster: roster, line: line}
}

func (w *waitBusActivity) Tick(host Host) {
	if w.boarded {
		return
	}
	host.SetQueuing(true)
	if !w.joined {
		w.roster.join(w.line, host.ID())
		w.joined = true
	}
	for _, msg := range host.Drain() {
		if msg.Kind == "bus-boarded" && msg.Payload == w.line {
			w.boarded = true
			host.SetQueuing(false)
			return
		}
	}
}

func (w *waitBusActivity) Done() bool { return w.boarded }

func (w *waitBusActivity) Kind() Kind { return KindWaitBusActivity }
