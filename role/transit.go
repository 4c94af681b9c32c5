package role

import "github.com/trafficlab/aurasim/kernel/message"

// busDriver is the BusDriver role variant: moves like driver, but on
// reaching its target distance it boards every agent waiting on its line
// before reporting Done, by posting a "boarded" message to each (§4.J
// "signaled by a message from the BusDriver"). Line dispatch, scheduling,
// and multiple stops are out of scope; one leg models one line segment,
// sufficient for scenario 6 in §8.
type busDriver struct {
	targetCM int64
	speedCM  int32
	traveled int64
	roster   *transitRoster
	line     string
	boarded  bool
}

func newBusDriver(targetCM int64, speedCM int32, roster *transitRoster, line string) *busDriver {
	if speedCM <= 0 {
		speedCM = 1
	}
	return &busDriver{targetCM: targetCM, speedCM: speedCM, roster: roster, line: line}
}

func (b *busDriver) Tick(host Host) {
	if b.traveled >= b.targetCM {
		if !b.boarded {
			b.announceBoarding(host)
		}
		return
	}
	step := int64(b.speedCM)
	if b.traveled+step > b.targetCM {
		step = b.targetCM - b.traveled
	}
	b.traveled += step
	host.SetOffsetCM(host.OffsetCM() + step)
	x, y := host.PositionCM()
	host.SetPositionCM(x+int32(step), y)
	if b.traveled >= b.targetCM {
		b.announceBoarding(host)
	}
}

func (b *busDriver) announceBoarding(host Host) {
	for _, waiterID := range b.roster.board(b.line) {
		host.Bus().Post(
			message.HandlerID(host.ID()), message.HandlerID(waiterID),
			host.Now(), "bus-boarded", b.line,
		)
	}
	b.boarded = true
}

func (b *busDriver) Done() bool { return b.traveled >= b.targetCM && b.boarded }

func (b *busDriver) Kind() Kind { return KindBusDriver }

// passenger is the Passenger role variant, entered once WaitBusActivity
// reports boarding: in this model boarding and the ride to the
// destination stop are a single conflated event (the busDriver's leg
// already covers the distance before it announces boarding), so riding is
// instantaneous and Passenger completes on its first tick. Alighting-stop
// choice is out of scope (§1); this preserves agent identity across the
// Pedestrian -> WaitBusActivity -> Passenger -> Pedestrian transition
// chain in scenario 6 (§8) without claiming a realistic ride duration.
type passenger struct {
	line string
	done bool
}

func newPassenger(_ *transitRoster, line string) *passenger {
	return &passenger{line: line}
}

func (p *passenger) Tick(host Host) {
	p.done = true
}

func (p *passenger) Done() bool { return p.done }

func (p *passenger) Kind() Kind { return KindPassenger }
