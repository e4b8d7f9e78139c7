package logstore

import "testing"

func TestOverlayMapStageThenCommit(t *testing.T) {
	o := newOverlayMap()

	if _, ok := o.tryGet("foo"); ok {
		t.Fatalf("tryGet on empty overlay should miss")
	}

	o.stage("foo", 1)
	id, ok := o.tryGet("foo")
	if !ok || id != 1 {
		t.Fatalf("tryGet after stage = (%d, %v), want (1, true)", id, ok)
	}

	o.commit()
	id, ok = o.tryGet("foo")
	if !ok || id != 1 {
		t.Fatalf("tryGet after commit = (%d, %v), want (1, true)", id, ok)
	}
}

func TestOverlayMapDiscardDropsOnlyStaged(t *testing.T) {
	o := newOverlayMap()
	o.stage("committed-one", 1)
	o.commit()

	o.stage("pending-two", 2)
	o.discard()

	if _, ok := o.tryGet("pending-two"); ok {
		t.Fatalf("discard should have dropped the staged entry")
	}
	if id, ok := o.tryGet("committed-one"); !ok || id != 1 {
		t.Fatalf("discard should not affect committed entries")
	}
}

func TestOverlayMapClearResetsBothTiers(t *testing.T) {
	o := newOverlayMap()
	o.stage("committed", 1)
	o.commit()
	o.stage("staged", 2)

	o.clear()

	if _, ok := o.tryGet("committed"); ok {
		t.Fatalf("clear should drop committed entries")
	}
	if _, ok := o.tryGet("staged"); ok {
		t.Fatalf("clear should drop staged entries")
	}
}

func TestOverlayMapStagedShadowsCommitted(t *testing.T) {
	o := newOverlayMap()
	o.stage("name", 1)
	o.commit()
	o.stage("name", 2)

	id, ok := o.tryGet("name")
	if !ok || id != 2 {
		t.Fatalf("staged entry should shadow committed entry, got (%d, %v)", id, ok)
	}
}
