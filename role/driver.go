package role

// driver is the Driver role variant: moves a host forward along its lane
// at a fixed speed until it has covered the leg's target distance, then
// reports Done (§4.D step 4). Lane-changing and car-following are out of
// scope (§1); this provides the monotonic-progress kinematics scenario 2
// in §8 exercises.
type driver struct {
	targetCM int64
	speedCM  int32
	traveled int64
}

func newDriver(targetCM int64, speedCM int32) *driver {
	if speedCM <= 0 {
		speedCM = 1
	}
	return &driver{targetCM: targetCM, speedCM: speedCM}
}

func (d *driver) Tick(host Host) {
	if d.Done() {
		return
	}
	host.SetQueuing(false)
	step := int64(d.speedCM)
	if d.traveled+step > d.targetCM {
		step = d.targetCM - d.traveled
	}
	d.traveled += step
	host.SetOffsetCM(host.OffsetCM() + step)
	x, y := host.PositionCM()
	host.SetPositionCM(x+int32(step), y)
}

func (d *driver) Done() bool { return d.traveled >= d.targetCM }

func (d *driver) Kind() Kind { return KindDriver }
