package credential

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	dErrors "pinauth/pkg/domain-errors"
)

// VerifyPool bounds concurrent bcrypt work. Hashing is CPU-bound and
// deliberately expensive; without a bound, a burst of login attempts would
// amplify latency for every request on the box.
type VerifyPool struct {
	hasher *Hasher
	sem    *semaphore.Weighted
}

// NewVerifyPool wraps a Hasher with a concurrency limit. A limit below one
// falls back to GOMAXPROCS.
func NewVerifyPool(hasher *Hasher, limit int) *VerifyPool {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &VerifyPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(limit)),
	}
}

// Verify acquires a slot before running the comparison, honoring context
// cancellation while waiting.
func (p *VerifyPool) Verify(ctx context.Context, plain, hashed string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "verification canceled")
	}
	defer p.sem.Release(1)
	return p.hasher.Verify(plain, hashed), nil
}

// Hash acquires a slot before hashing; provisioning shares the same budget as
// verification since both burn a full bcrypt round.
func (p *VerifyPool) Hash(ctx context.Context, plain string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "hashing canceled")
	}
	defer p.sem.Release(1)
	return p.hasher.Hash(plain)
}
