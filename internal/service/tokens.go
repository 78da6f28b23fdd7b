package service

import (
	"context"
	"sync/atomic"
)

// TokenTally accumulates token consumption across the stages of one request.
// The recommendation flow spends tokens in two places (query embedding,
// explanation) that do not share a call path, so the tally rides the request
// context and each stage adds its true cost.
type TokenTally struct {
	total atomic.Int64
}

// Add records tokens consumed by one stage.
func (t *TokenTally) Add(n int64) {
	t.total.Add(n)
}

// Total returns the tokens recorded so far.
func (t *TokenTally) Total() int64 {
	return t.total.Load()
}

type tallyKey struct{}

// WithTokenTally attaches a fresh tally to the context.
func WithTokenTally(ctx context.Context) (context.Context, *TokenTally) {
	tally := &TokenTally{}
	return context.WithValue(ctx, tallyKey{}, tally), tally
}

// AddTokens records tokens on the context's tally, if one is attached.
func AddTokens(ctx context.Context, n int64) {
	if tally, ok := ctx.Value(tallyKey{}).(*TokenTally); ok {
		tally.Add(n)
	}
}
