package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mateovidal/routewave-backend/pkg/clock"
)

type stubSequencer struct {
	next    int64
	err     error
	lastKey string
	lastTTL time.Duration
}

func (s *stubSequencer) NextSequence(ctx context.Context, name string, ttl time.Duration) (int64, error) {
	s.lastKey = name
	s.lastTTL = ttl
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestNumberGeneratorFormat(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	seq := &stubSequencer{}
	gen := NewNumberGenerator(seq, clock.Fixed(at))

	got, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "ORD-260315-0001" {
		t.Fatalf("expected ORD-260315-0001, got %s", got)
	}
	if seq.lastKey != "orders:260315" {
		t.Fatalf("expected per-day sequence key, got %s", seq.lastKey)
	}
	if seq.lastTTL != sequenceTTL {
		t.Fatalf("expected ttl %s, got %s", sequenceTTL, seq.lastTTL)
	}

	got, err = gen.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "ORD-260315-0002" {
		t.Fatalf("expected ORD-260315-0002, got %s", got)
	}
}

func TestNumberGeneratorWidensPastFourDigits(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	seq := &stubSequencer{next: 9999}
	gen := NewNumberGenerator(seq, clock.Fixed(at))

	got, err := gen.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "ORD-260315-10000" {
		t.Fatalf("expected ORD-260315-10000, got %s", got)
	}
}

func TestNumberGeneratorPropagatesSequencerError(t *testing.T) {
	seq := &stubSequencer{err: errors.New("redis down")}
	gen := NewNumberGenerator(seq, clock.Fixed(time.Now()))

	if _, err := gen.Next(context.Background()); err == nil {
		t.Fatal("expected error when sequencer fails")
	}
}
