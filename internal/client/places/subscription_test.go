package places

import "testing"

func TestPublishDropsWhenSlotIsFull(t *testing.T) {
	subscription := NewSubscription()
	defer subscription.Close()

	if !subscription.Publish(Selection{PlaceID: "P1"}) {
		t.Fatal("expected first publish to be accepted")
	}
	if subscription.Publish(Selection{PlaceID: "P2"}) {
		t.Fatal("expected second publish to be dropped while the slot is full")
	}

	received := <-subscription.Selections()
	if received.PlaceID != "P1" {
		t.Fatalf("expected the first selection, got %q", received.PlaceID)
	}

	if !subscription.Publish(Selection{PlaceID: "P3"}) {
		t.Fatal("expected publish to succeed once the slot drained")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	subscription := NewSubscription()
	subscription.Close()
	subscription.Close()

	if subscription.Publish(Selection{PlaceID: "P1"}) {
		t.Fatal("expected publish on a closed subscription to be dropped")
	}
	if _, open := <-subscription.Selections(); open {
		t.Fatal("expected the channel to be closed")
	}
}

func TestCloneRejectsUnusableSelections(t *testing.T) {
	if _, ok := (*Selection)(nil).Clone(); ok {
		t.Fatal("nil selection must not clone")
	}
	if _, ok := (&Selection{}).Clone(); ok {
		t.Fatal("selection without a place id must not clone")
	}
	carried := &Selection{PlaceID: "P1", Name: "Cafe"}
	cloned, ok := carried.Clone()
	if !ok || cloned.PlaceID != "P1" || cloned.Name != "Cafe" {
		t.Fatalf("expected a usable clone, got %+v (ok=%v)", cloned, ok)
	}
}
