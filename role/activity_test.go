package role

import (
	"testing"

	"github.com/trafficlab/aurasim/tripchain"
)

func TestActivityPerformerCompletesAtEndTime(t *testing.T) {
	a := newActivityPerformer(&tripchain.Activity{EndTimeMS: 1000})
	host := newFakeHost(1)

	host.now = 500
	a.Tick(host)
	if a.Done() {
		t.Fatal("activityPerformer reported Done before its endTime")
	}

	host.now = 1000
	a.Tick(host)
	if !a.Done() {
		t.Fatal("activityPerformer should report Done once now >= endTime")
	}
	if a.Kind() != KindActivityPerformer {
		t.Fatalf("Kind() = %q, want %q", a.Kind(), KindActivityPerformer)
	}
}

func TestActivityPerformerNilActivityEndsImmediately(t *testing.T) {
	a := newActivityPerformer(nil)
	host := newFakeHost(1)
	host.now = 0
	a.Tick(host)
	if !a.Done() {
		t.Fatal("activityPerformer with a nil activity should default to endTime 0 and complete immediately")
	}
}
