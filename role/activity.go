package role

import "github.com/trafficlab/aurasim/tripchain"

// activityPerformer is the ActivityPerformer role variant: the agent
// remains stationary at the activity's location until the simulation
// clock reaches its endTime (§3 Activity interval [startTime,endTime]).
type activityPerformer struct {
	endTimeMS int64
	done      bool
}

func newActivityPerformer(a *tripchain.Activity) *activityPerformer {
	end := int64(0)
	if a != nil {
		end = a.EndTimeMS
	}
	return &activityPerformer{endTimeMS: end}
}

func (a *activityPerformer) Tick(host Host) {
	if host.Now() >= a.endTimeMS {
		a.done = true
	}
}

func (a *activityPerformer) Done() bool { return a.done }

func (a *activityPerformer) Kind() Kind { return KindActivityPerformer }
