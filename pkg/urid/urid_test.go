package urid

import "testing"

func TestMapAssignsStableIncreasingIDs(t *testing.T) {
	tbl := New()

	id1 := tbl.Map(URIMidiEvent)
	id2 := tbl.Map(URISequence)

	if id1 == id2 {
		t.Fatalf("expected distinct IDs, got %d and %d", id1, id2)
	}
	if id1 < 1 || id2 < 1 {
		t.Fatalf("IDs must start at 1, got %d and %d", id1, id2)
	}
	if id2 <= id1 {
		t.Fatalf("expected increasing IDs, got %d then %d", id1, id2)
	}

	// Mapping the same URI again returns the same ID.
	if again := tbl.Map(URIMidiEvent); again != id1 {
		t.Fatalf("Map(same uri) = %d, want %d", again, id1)
	}
}

func TestUnmapRoundTrip(t *testing.T) {
	tbl := New()
	id := tbl.Map(URIPatchSet)

	uri, ok := tbl.Unmap(id)
	if !ok {
		t.Fatal("Unmap: expected ok")
	}
	if uri != URIPatchSet {
		t.Fatalf("Unmap(%d) = %q, want %q", id, uri, URIPatchSet)
	}
}

func TestUnmapUnknownID(t *testing.T) {
	tbl := New()
	if _, ok := tbl.Unmap(999); ok {
		t.Fatal("Unmap(999): expected ok=false for an ID never issued")
	}
	if _, ok := tbl.Unmap(0); ok {
		t.Fatal("Unmap(0): expected ok=false, 0 is not a valid ID")
	}
}

func TestSeedPopulatesWellKnown(t *testing.T) {
	tbl := Seed(New())
	if tbl.Count() != len(WellKnown) {
		t.Fatalf("Count() = %d, want %d", tbl.Count(), len(WellKnown))
	}

	midiID := tbl.Map(URIMidiEvent)
	seqID := tbl.Map(URISequence)
	if midiID == seqID {
		t.Fatal("well-known URIs must map to distinct IDs")
	}

	uri, ok := tbl.Unmap(midiID)
	if !ok || uri != URIMidiEvent {
		t.Fatalf("Unmap(midiID) = %q, %v", uri, ok)
	}
}
