package health

import (
	"context"
	"testing"

	"github.com/relayhealth/relayhealth/internal/store"
	"github.com/relayhealth/relayhealth/internal/store/memstore"
)

func TestCodecTargetListRoundTrip(t *testing.T) {
	c := newCodec(memstore.New(), newKeyBuilder("t"))
	ctx := context.Background()

	list, err := c.getTargetList(ctx)
	if err != nil {
		t.Fatalf("getTargetList on unwritten key: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("empty target list len = %d, want 0", len(list))
	}

	want := TargetList{
		{IP: "10.0.0.1", Port: 80, Hostname: "a"},
		{IP: "10.0.0.2", Port: 443, Hostname: "b", HostHeader: "example.com"},
	}
	if err := c.putTargetList(ctx, want); err != nil {
		t.Fatalf("putTargetList: %v", err)
	}
	got, err := c.getTargetList(ctx)
	if err != nil {
		t.Fatalf("getTargetList: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d targets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCodecStateRoundTrip(t *testing.T) {
	c := newCodec(memstore.New(), newKeyBuilder("t"))
	ctx := context.Background()

	if _, err := c.getState(ctx, "k"); err != store.ErrNotFound {
		t.Fatalf("getState on unwritten key: %v, want ErrNotFound", err)
	}

	if err := c.setState(ctx, "k", StateMostlyHealthy); err != nil {
		t.Fatalf("setState: %v", err)
	}
	got, err := c.getState(ctx, "k")
	if err != nil {
		t.Fatalf("getState: %v", err)
	}
	if got != StateMostlyHealthy {
		t.Fatalf("getState = %v, want StateMostlyHealthy", got)
	}

	if err := c.deleteState(ctx, "k"); err != nil {
		t.Fatalf("deleteState: %v", err)
	}
	if _, err := c.getState(ctx, "k"); err != store.ErrNotFound {
		t.Fatalf("getState after delete: %v, want ErrNotFound", err)
	}
}

func TestCodecCounterIncrSetClear(t *testing.T) {
	c := newCodec(memstore.New(), newKeyBuilder("t"))
	ctx := context.Background()

	word, err := c.incrCounter(ctx, "k", SelectorHTTP)
	if err != nil {
		t.Fatalf("incrCounter: %v", err)
	}
	if word.Extract(SelectorHTTP) != 1 {
		t.Fatalf("http lane = %d, want 1", word.Extract(SelectorHTTP))
	}

	word, err = c.incrCounter(ctx, "k", SelectorHTTP)
	if err != nil {
		t.Fatalf("incrCounter: %v", err)
	}
	if word.Extract(SelectorHTTP) != 2 {
		t.Fatalf("http lane = %d, want 2", word.Extract(SelectorHTTP))
	}

	read, err := c.getCounterWord(ctx, "k")
	if err != nil {
		t.Fatalf("getCounterWord: %v", err)
	}
	if read != word {
		t.Fatalf("getCounterWord = %#x, want %#x (matching last incrCounter result)", uint32(read), uint32(word))
	}

	if err := c.setCounterWord(ctx, "k", PackCounterWord(9, 0, 0, 0)); err != nil {
		t.Fatalf("setCounterWord: %v", err)
	}
	read, err = c.getCounterWord(ctx, "k")
	if err != nil {
		t.Fatalf("getCounterWord after setCounterWord: %v", err)
	}
	if read.Extract(SelectorSuccess) != 9 {
		t.Fatalf("success lane = %d, want 9", read.Extract(SelectorSuccess))
	}

	// A subsequent Incr against a key SetCounter last wrote must still
	// see and build on that value, proving the two calls share one
	// native representation.
	after, err := c.incrCounter(ctx, "k", SelectorSuccess)
	if err != nil {
		t.Fatalf("incrCounter after setCounterWord: %v", err)
	}
	if after.Extract(SelectorSuccess) != 10 {
		t.Fatalf("success lane after incr = %d, want 10 (SetCounter and Incr must share representation)", after.Extract(SelectorSuccess))
	}

	if err := c.clearCounter(ctx, "k"); err != nil {
		t.Fatalf("clearCounter: %v", err)
	}
	read, err = c.getCounterWord(ctx, "k")
	if err != nil {
		t.Fatalf("getCounterWord after clear: %v", err)
	}
	if read != 0 {
		t.Fatalf("counter word after clear = %#x, want 0", uint32(read))
	}
}
