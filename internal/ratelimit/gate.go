package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

// Defaults for the trailing usage window.
const (
	DefaultWindow = time.Hour
	DefaultBudget = 10000
)

// UsageStore is the capability the gate needs from durable usage storage.
// SumInWindow returns the total units a client consumed at or after since,
// along with the timestamp of the oldest qualifying record (zero when none
// exist). Append writes one immutable usage record.
type UsageStore interface {
	SumInWindow(ctx context.Context, clientID string, since time.Time) (int64, time.Time, error)
	Append(ctx context.Context, record domain.ClientUsageRecord) error
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed      bool
	UnitsUsed    int64
	Limit        int64
	ResetAt      time.Time
	RetryAfterIn time.Duration
}

// Gate enforces a per-client unit budget over a trailing window. The window
// slides continuously with wall-clock time, so a client is never penalized
// by alignment to calendar boundaries. Enforcement is best-effort: two
// concurrent checks from the same client can both be admitted before either
// records usage, and the gate holds no in-process locks because the store
// may be shared across service instances.
type Gate struct {
	store  UsageStore
	window time.Duration
	budget int64
	now    func() time.Time
}

// NewGate creates a Gate over the given store. Non-positive window or budget
// fall back to the defaults.
func NewGate(store UsageStore, window time.Duration, budget int64) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Gate{
		store:  store,
		window: window,
		budget: budget,
		now:    time.Now,
	}
}

// CheckAndAdmit decides whether a client may proceed. Admission is
// speculative: usage is recorded with the true cost after the gated work
// completes. If the usage store is unreachable the gate fails open and logs
// the fault; serving the request outranks strict quota enforcement during
// infrastructure failure.
func (g *Gate) CheckAndAdmit(ctx context.Context, clientID string) Decision {
	now := g.now().UTC()
	since := now.Add(-g.window)

	used, oldest, err := g.store.SumInWindow(ctx, clientID, since)
	if err != nil {
		log.Printf("rate gate: usage store read failed, failing open for %s: %v", clientID, err)
		telemetry.CaptureError(ctx, domain.NewDomainErrorWithCause(
			domain.ErrCodeCollaboratorUnavailable, "usage store read failed", err))
		return Decision{
			Allowed: true,
			Limit:   g.budget,
			ResetAt: now.Add(g.window),
		}
	}

	// Reset time is the earliest moment consumption could fall back under
	// budget: one window after the oldest qualifying record.
	resetAt := now.Add(g.window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(g.window)
	}

	retryAfter := time.Duration(0)
	if d := resetAt.Sub(now); d > 0 {
		retryAfter = d
	}

	return Decision{
		Allowed:      used < g.budget,
		UnitsUsed:    used,
		Limit:        g.budget,
		ResetAt:      resetAt,
		RetryAfterIn: retryAfter,
	}
}

// RecordUsage appends a usage record with the true cost of completed work.
// Records are append-only and never rolled back. Failure to record must not
// fail the request; the caller treats this as best-effort.
func (g *Gate) RecordUsage(ctx context.Context, clientID string, units int64, resource, operation string) error {
	record := domain.ClientUsageRecord{
		ClientID:      clientID,
		UnitsConsumed: units,
		Resource:      resource,
		Operation:     operation,
		RecordedAt:    g.now().UTC(),
	}
	if err := g.store.Append(ctx, record); err != nil {
		log.Printf("rate gate: failed to record %d units for %s: %v", units, clientID, err)
		return err
	}
	return nil
}
