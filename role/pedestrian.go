package role

// pedestrian is the Pedestrian role variant: identical progress model to
// driver but at walking speed and never occupying a lane rule that
// requires vehicle clearance. Kept as a distinct type (rather than driver
// with a parameter) to match §3's explicit Role variant list and give
// output records a stable role-kind label.
type pedestrian struct {
	targetCM int64
	speedCM  int32
	traveled int64
}

func newPedestrian(targetCM int64, speedCM int32) *pedestrian {
	if speedCM <= 0 {
		speedCM = 1
	}
	return &pedestrian{targetCM: targetCM, speedCM: speedCM}
}

func (p *pedestrian) Tick(host Host) {
	if p.Done() {
		return
	}
	step := int64(p.speedCM)
	if p.traveled+step > p.targetCM {
		step = p.targetCM - p.traveled
	}
	p.traveled += step
	host.SetOffsetCM(host.OffsetCM() + step)
	x, y := host.PositionCM()
	host.SetPositionCM(x+int32(step), y)
}

func (p *pedestrian) Done() bool { return p.traveled >= p.targetCM }

func (p *pedestrian) Kind() Kind { return KindPedestrian }
