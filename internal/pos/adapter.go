package pos

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"posbridge/internal/domain"
)

//go:generate mockgen -destination=mocks/adapter.go -package=mocks posbridge/internal/pos Adapter

// Adapter получает текущий открытый чек стола у конкретного POS-вендора
type Adapter interface {
	Provider() domain.POSProvider
	GetReceiptForTable(ctx context.Context, tableID, restaurantID string) (*domain.Receipt, error)
}

type options struct {
	httpClient *http.Client
	logger     logrus.FieldLogger
	getenv     func(string) string
	now        func() time.Time
}

type Option func(*options)

// WithHTTPClient sets the client used for vendor calls; its Timeout bounds every call.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithGetenv overrides environment lookups (Loyverse credential fallback).
func WithGetenv(fn func(string) string) Option {
	return func(o *options) { o.getenv = fn }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Factory строит адаптер по провайдеру и ключам. Каждый вызов даёт новый экземпляр.
type Factory struct {
	opts options
}

func NewFactory(opts ...Option) *Factory {
	o := options{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		getenv:     os.Getenv,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}
	return &Factory{opts: o}
}

func (f *Factory) NewAdapter(provider domain.POSProvider, credentials map[string]string) (Adapter, error) {
	var (
		a   Adapter
		err error
	)
	switch provider {
	case domain.ProviderSquare:
		a, err = newSquareAdapter(credentials, f.opts)
	case domain.ProviderToast:
		a, err = newToastAdapter(credentials, f.opts)
	case domain.ProviderMicros:
		a, err = newMicrosAdapter(credentials, f.opts)
	case domain.ProviderFoodics:
		a, err = newFoodicsAdapter(credentials, f.opts)
	case domain.ProviderLoyverse:
		a, err = newLoyverseAdapter(credentials, f.opts)
	default:
		return nil, &domain.UnsupportedProviderError{Provider: provider}
	}
	if err != nil {
		return nil, err
	}
	return &guardedAdapter{inner: a, now: f.opts.now}, nil
}

// guardedAdapter гарантирует, что наружу уходит только PosIntegrationError, даже при панике
type guardedAdapter struct {
	inner Adapter
	now   func() time.Time
}

func (g *guardedAdapter) Provider() domain.POSProvider { return g.inner.Provider() }

func (g *guardedAdapter) GetReceiptForTable(ctx context.Context, tableID, restaurantID string) (r *domain.Receipt, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			// non-error panic values become "Unknown error"
			cause, _ := rec.(error)
			r, err = nil, domain.NewPosIntegrationError(g.Provider(), cause)
		}
	}()

	r, err = g.inner.GetReceiptForTable(ctx, tableID, restaurantID)
	if err != nil {
		var pe *domain.PosIntegrationError
		if !errors.As(err, &pe) {
			err = domain.NewPosIntegrationError(g.Provider(), err)
		}
		return nil, err
	}
	if r == nil {
		return nil, domain.NewPosIntegrationError(g.Provider(), errors.New("vendor returned no receipt"))
	}
	if r.Items == nil {
		r.Items = []domain.ReceiptItem{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = g.now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	return r, nil
}
