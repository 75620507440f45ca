// Package checkout talks to the hosted payment provider.
package checkout

import (
	"context"
)

type Session struct {
	ID  string
	URL string
}

// Provider is the subset of the payment provider API the payment workflow
// needs. Each call is a single attempt.
type Provider interface {
	CreateProduct(ctx context.Context, name, description string) (string, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error)
	CreateCheckoutSession(ctx context.Context, priceID string) (Session, error)
}
