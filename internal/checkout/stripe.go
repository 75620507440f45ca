package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	Timeout    time.Duration
	// APIURL overrides the provider endpoint. Empty means the live API.
	APIURL string
}

// StripeProvider owns its own API client built from StripeConfig. It never
// touches the package level stripe.Key.
type StripeProvider struct {
	api        *client.API
	successURL string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}

	return &StripeProvider{
		api:        client.New(cfg.SecretKey, backends),
		successURL: cfg.SuccessURL,
	}
}

func (p *StripeProvider) CreateProduct(ctx context.Context, name, description string) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(name)}
	if description != "" {
		params.Description = stripe.String(description)
	}
	params.Context = ctx

	product, err := p.api.Products.New(params)
	if err != nil {
		return "", providerError(err)
	}
	return product.ID, nil
}

func (p *StripeProvider) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx

	price, err := p.api.Prices.New(params)
	if err != nil {
		return "", providerError(err)
	}
	return price.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, priceID string) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
	}
	params.Context = ctx

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, providerError(err)
	}
	return Session{ID: session.ID, URL: session.URL}, nil
}

// Error carries the provider's own message so callers can surface it.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &Error{Message: stripeErr.Msg, Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
