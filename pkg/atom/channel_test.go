package atom

import "testing"

func TestCoalescingLastWriterWins(t *testing.T) {
	ch, err := New(Coalescing, 64, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := ch.Post(1, []byte("first")); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if err := ch.Post(1, []byte("second")); err != nil {
		t.Fatalf("Post: %v", err)
	}

	msg, ok := ch.TryConsume()
	if !ok {
		t.Fatal("TryConsume: expected a pending message")
	}
	if string(msg.Body) != "second" {
		t.Fatalf("TryConsume body = %q, want %q (last writer wins)", msg.Body, "second")
	}

	if _, ok := ch.TryConsume(); ok {
		t.Fatal("TryConsume: pending flag should have been cleared")
	}
}

func TestPostTooLarge(t *testing.T) {
	ch, _ := New(Coalescing, 4, 256)
	if err := ch.Post(1, []byte("toolong")); err != ErrTooLarge {
		t.Fatalf("Post: got %v, want ErrTooLarge", err)
	}
}

func TestLosslessQueuesEveryPost(t *testing.T) {
	ch, err := New(Lossless, 64, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ch.Post(1, []byte("a"))
	ch.Post(2, []byte("b"))

	m1, ok := ch.TryConsume()
	if !ok || m1.Type != 1 || string(m1.Body) != "a" {
		t.Fatalf("first consume = %+v, %v", m1, ok)
	}
	m2, ok := ch.TryConsume()
	if !ok || m2.Type != 2 || string(m2.Body) != "b" {
		t.Fatalf("second consume = %+v, %v", m2, ok)
	}
}

func TestOutboundRoundTrip(t *testing.T) {
	ch, _ := New(Coalescing, 64, 256)
	ch.PostOutbound(42, []byte("hello"))

	typ, body, ok := ch.ReadOutbound()
	if !ok {
		t.Fatal("ReadOutbound: expected an event")
	}
	if typ != 42 || string(body) != "hello" {
		t.Fatalf("ReadOutbound = %d %q", typ, body)
	}

	if _, _, ok := ch.ReadOutbound(); ok {
		t.Fatal("ReadOutbound: expected no more events")
	}
}

func TestOutboundOrdering(t *testing.T) {
	ch, _ := New(Coalescing, 64, 256)
	ch.PostOutbound(1, []byte("one"))
	ch.PostOutbound(2, []byte("two"))
	ch.PostOutbound(3, []byte("three"))

	want := []string{"one", "two", "three"}
	for _, w := range want {
		_, body, ok := ch.ReadOutbound()
		if !ok || string(body) != w {
			t.Fatalf("ReadOutbound = %q, want %q", body, w)
		}
	}
}

func TestOutboundDropsWhenFull(t *testing.T) {
	ch, _ := New(Coalescing, 64, 16) // tiny ringbuffer
	ch.PostOutbound(1, []byte("0123456789")) // 8 header + 10 body > 16
	if ch.DroppedOutbound() != 1 {
		t.Fatalf("DroppedOutbound() = %d, want 1", ch.DroppedOutbound())
	}

	// A well-sized event after the drop should still go through intact.
	ch.PostOutbound(2, []byte("ok"))
	typ, body, ok := ch.ReadOutbound()
	if !ok || typ != 2 || string(body) != "ok" {
		t.Fatalf("ReadOutbound after drop = %d %q %v", typ, body, ok)
	}
}
