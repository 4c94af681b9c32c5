package message

import "testing"

func TestPostNotDeliverableBeforeFlip(t *testing.T) {
	b := New()
	b.Register(1)
	b.Post(2, 1, 0, "hello", nil)
	if got := b.Drain(1); got != nil {
		t.Fatalf("Drain before Flip = %v, want nil (message posted this tick isn't deliverable until next)", got)
	}
}

func TestPostDeliverableAfterFlip(t *testing.T) {
	b := New()
	b.Register(1)
	b.Post(2, 1, 0, "hello", "payload")
	b.Flip()
	got := b.Drain(1)
	if len(got) != 1 {
		t.Fatalf("Drain after Flip returned %d messages, want 1", len(got))
	}
	if got[0].Kind != "hello" || got[0].Payload != "payload" {
		t.Fatalf("unexpected message: %+v", got[0])
	}
	if second := b.Drain(1); second != nil {
		t.Fatalf("second Drain = %v, want nil (ready queue is cleared on drain)", second)
	}
}

func TestPostToUnregisteredTargetIsDroppedAndCounted(t *testing.T) {
	b := New()
	b.Post(1, 99, 0, "kind", nil)
	if b.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", b.Dropped())
	}
}

func TestFlipOrdersBySenderThenSequence(t *testing.T) {
	b := New()
	b.Register(1)
	// Post from sender 5 twice, then sender 2 once; sequence should break
	// ties only within the same sender, and sender id sorts the rest.
	b.Post(5, 1, 0, "a", nil)
	b.Post(2, 1, 0, "b", nil)
	b.Post(5, 1, 0, "c", nil)
	b.Flip()

	got := b.Drain(1)
	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	wantKinds := []string{"b", "a", "c"}
	for i, m := range got {
		if m.Kind != wantKinds[i] {
			t.Fatalf("message %d kind = %q, want %q (order: %v)", i, m.Kind, wantKinds[i], got)
		}
	}
}

func TestUnregisterDropsAlreadyPendingMessagesAtFlip(t *testing.T) {
	b := New()
	b.Register(1)
	b.Post(2, 1, 0, "kind", nil)
	b.Unregister(1)
	b.Flip()
	if got := b.Drain(1); got != nil {
		t.Fatalf("Drain after unregister = %v, want nil", got)
	}
}
