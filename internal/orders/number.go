package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/mateovidal/routewave-backend/pkg/clock"
)

// Daily sequences only need to survive the day they stamp; 48h leaves slack
// for clock skew around midnight.
const sequenceTTL = 48 * time.Hour

type sequencer interface {
	NextSequence(ctx context.Context, name string, ttl time.Duration) (int64, error)
}

// NumberGenerator mints human-readable order numbers of the form
// ORD-YYMMDD-NNNN, where NNNN is a per-day counter kept in Redis.
type NumberGenerator struct {
	seq   sequencer
	clock clock.Clock
}

// NewNumberGenerator wires the generator to its sequence store and clock.
func NewNumberGenerator(seq sequencer, clk clock.Clock) *NumberGenerator {
	return &NumberGenerator{seq: seq, clock: clk}
}

// Next returns the next unique order number for today.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.clock.Now().Format("060102")
	n, err := g.seq.NextSequence(ctx, "orders:"+day, sequenceTTL)
	if err != nil {
		return "", fmt.Errorf("advancing order sequence: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, n), nil
}
