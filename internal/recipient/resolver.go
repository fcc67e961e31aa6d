// Package recipient determines which push credentials a domain action must
// supply to the backend send call. It never contacts the push backend itself
// and never blocks the business transaction: delivery is best-effort.
package recipient

import (
	"context"
	"log"

	"hrpulse/internal/domain"
	"hrpulse/internal/token"
)

type Resolver struct {
	tokens *token.Manager
}

func New(tokens *token.Manager) *Resolver {
	return &Resolver{tokens: tokens}
}

// Actor returns the acting user's token, regenerated fresh each call: tokens
// are cheap to fetch and rotation is transport-controlled. Failure degrades to
// the sentinel.
func (r *Resolver) Actor(ctx context.Context) string {
	tok, err := r.tokens.GenerateToken(ctx)
	if err != nil {
		log.Printf("[Recipient] actor token unavailable, using sentinel: %v", err)
		return domain.SentinelToken
	}
	return tok
}

// Counterpart returns the other party's token, preferring the one embedded in
// previously fetched domain data and falling back to a fresh generation when
// absent.
func (r *Resolver) Counterpart(ctx context.Context, embedded string) string {
	if embedded != "" {
		return embedded
	}
	tok, err := r.tokens.GenerateToken(ctx)
	if err != nil {
		log.Printf("[Recipient] counterpart token unavailable, using sentinel: %v", err)
		return domain.SentinelToken
	}
	return tok
}

// Resolve returns both ends of a notification for a domain action.
func (r *Resolver) Resolve(ctx context.Context, embeddedCounterpart string) (actor, counterpart string) {
	return r.Actor(ctx), r.Counterpart(ctx, embeddedCounterpart)
}
