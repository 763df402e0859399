package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gitrdm/sparqlflow/pkg/stream"
)

func TestFromSliceYieldsValuesInOrder(t *testing.T) {
	s := stream.FromSlice(context.Background(), []string{"x"}, []int{1, 2, 3})

	var got []int
	for {
		v, ok, err := s.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
}

func TestMetadataReflectsKnownTotal(t *testing.T) {
	s := stream.FromSlice(context.Background(), nil, []int{1, 2})
	if got := s.Metadata().TotalItems; got != 2 {
		t.Fatalf("expected TotalItems 2, got %d", got)
	}
}

func TestNextAfterExhaustionReturnsFalseRepeatedly(t *testing.T) {
	s := stream.FromSlice(context.Background(), nil, []int{1})
	_, ok, _ := s.Next()
	if !ok {
		t.Fatal("expected first Next to yield a value")
	}
	for i := 0; i < 3; i++ {
		_, ok, err := s.Next()
		if ok || err != nil {
			t.Fatalf("expected exhausted stream to keep returning false,nil; got ok=%v err=%v", ok, err)
		}
	}
}

func TestProducerErrorIsDeliveredOnce(t *testing.T) {
	wantErr := errors.New("source exploded")
	s := stream.New[int](context.Background(), nil, nil, func(ctx context.Context, emit func(int) bool) error {
		emit(1)
		return wantErr
	})

	_, ok, err := s.Next()
	if !ok || err != nil {
		t.Fatalf("expected first value with no error, got ok=%v err=%v", ok, err)
	}
	_, ok, err = s.Next()
	if ok {
		t.Fatal("expected stream exhausted on second Next")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected producer error to propagate, got %v", err)
	}
}

func TestDestroyCancelsPendingProducer(t *testing.T) {
	started := make(chan struct{})
	s := stream.New[int](context.Background(), nil, nil, func(ctx context.Context, emit func(int) bool) error {
		close(started)
		for i := 0; ; i++ {
			if !emit(i) {
				return nil
			}
		}
	})

	<-started
	// Consume one value so the producer is blocked trying to send the
	// next one, then Destroy and confirm the stream closes promptly
	// instead of the producer looping forever.
	if _, ok, _ := s.Next(); !ok {
		t.Fatal("expected at least one value before destroying")
	}
	s.Destroy()

	done := make(chan struct{})
	go func() {
		for {
			_, ok, _ := s.Next()
			if !ok {
				close(done)
				return
			}
		}
	}()

	select {
	case <-time.After(time.Second):
		t.Fatal("expected producer to observe cancellation promptly")
	case <-done:
	}
}

func TestDrainConsumesEverything(t *testing.T) {
	s := stream.FromSlice(context.Background(), nil, []int{1, 2, 3})
	if err := stream.Drain(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, _ := s.Next()
	if ok {
		t.Fatal("expected stream exhausted after Drain")
	}
}

func TestCollectReturnsAllValues(t *testing.T) {
	s := stream.FromSlice(context.Background(), nil, []string{"a", "b"})
	got, err := stream.Collect(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
}
