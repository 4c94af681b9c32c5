package tripchain

import "testing"

func TestValidateRejectsEmptyChain(t *testing.T) {
	if err := Validate(nil, 0); err == nil {
		t.Fatal("Validate accepted an empty chain")
	}
}

func TestValidateRejectsNonAscendingSequence(t *testing.T) {
	items := []Item{
		{Kind: KindActivity, Activity: &Activity{SeqNum: 2, StartTimeMS: 0, EndTimeMS: 100}},
		{Kind: KindActivity, Activity: &Activity{SeqNum: 1, StartTimeMS: 100, EndTimeMS: 200}},
	}
	if err := Validate(items, 0); err == nil {
		t.Fatal("Validate accepted non-ascending sequence numbers")
	}
}

func TestValidateRejectsActivityEndBeforeStart(t *testing.T) {
	items := []Item{
		{Kind: KindActivity, Activity: &Activity{SeqNum: 1, StartTimeMS: 100, EndTimeMS: 50}},
	}
	if err := Validate(items, 100); err == nil {
		t.Fatal("Validate accepted an activity whose endTime precedes its startTime")
	}
}

func TestValidateRejectsTripWithNoSubTrips(t *testing.T) {
	items := []Item{
		{Kind: KindTrip, Trip: &Trip{SeqNum: 1}},
	}
	if err := Validate(items, 0); err == nil {
		t.Fatal("Validate accepted a trip with zero sub-trips")
	}
}

func TestValidateRejectsFirstActivityStartMismatch(t *testing.T) {
	items := []Item{
		{Kind: KindActivity, Activity: &Activity{SeqNum: 1, StartTimeMS: 50, EndTimeMS: 100}},
	}
	if err := Validate(items, 0); err == nil {
		t.Fatal("Validate accepted a first activity whose startTime doesn't match the agent's")
	}
}

func TestValidateAcceptsWellFormedChain(t *testing.T) {
	items := []Item{
		{Kind: KindActivity, Activity: &Activity{SeqNum: 1, StartTimeMS: 0, EndTimeMS: 1000}},
		{Kind: KindTrip, Trip: &Trip{SeqNum: 2, FromNode: 1, ToNode: 2, SubTrips: []SubTrip{{SeqNum: 1, Mode: ModeCar, Primary: true}}}},
		{Kind: KindActivity, Activity: &Activity{SeqNum: 3, StartTimeMS: 1000, EndTimeMS: 2000}},
	}
	if err := Validate(items, 0); err != nil {
		t.Fatalf("Validate rejected a well-formed chain: %v", err)
	}
}

func TestValidateRejectsBareSubTripItem(t *testing.T) {
	items := []Item{{Kind: KindSubTrip}}
	if err := Validate(items, 0); err == nil {
		t.Fatal("Validate accepted a bare sub-trip as a top-level item")
	}
}
