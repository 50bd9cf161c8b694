// Package db hands out database clients bound to a security context.
//
// Nothing here caches identity: every ForContext call derives a new Client
// from the caller's claims, and the privileged client is only reachable
// through Provider.Service.
package db

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-backoffice/internal/auth"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

var ErrNoSecret = errors.New("db: token parsing requires a JWT secret")

type Provider struct {
	app     *sqlx.DB
	service *sqlx.DB
	secret  []byte
	metrics *Metrics
	log     logger.ZapLogger
}

type Option func(*Provider)

func WithJWTSecret(secret string) Option {
	return func(p *Provider) { p.secret = []byte(secret) }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

func WithLogger(l logger.ZapLogger) Option {
	return func(p *Provider) { p.log = l }
}

// NewProvider takes the application pool (subject to row-level security) and
// the service pool (connected with a BYPASSRLS role).
func NewProvider(app, service *sqlx.DB, opts ...Option) *Provider {
	p := &Provider{app: app, service: service, log: logger.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForContext returns a client bound to u. u must be complete.
func (p *Provider) ForContext(u auth.UserContext) (*Client, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		db:      p.app,
		user:    &u,
		tenant:  u.EstablishmentID,
		metrics: p.metrics,
		log:     p.log,
	}, nil
}

// ForToken verifies a signed session token and binds a client to its claims.
func (p *Provider) ForToken(token string) (*Client, error) {
	if len(p.secret) == 0 {
		return nil, ErrNoSecret
	}
	claims, err := auth.ParseClaims(p.secret, token)
	if err != nil {
		return nil, err
	}
	return p.ForContext(claims.UserContext())
}

// ForRequest binds a client to the identity carried by ctx: the one stored by
// auth.WithUserContext, otherwise the bearer token of the incoming metadata,
// verified like ForToken. Unsigned identity headers are never trusted.
func (p *Provider) ForRequest(ctx context.Context) (*Client, error) {
	if u, ok := auth.FromContext(ctx); ok {
		return p.ForContext(u)
	}
	token, ok := auth.BearerFromIncomingContext(ctx)
	if !ok {
		return nil, auth.ErrMissingContext
	}
	return p.ForToken(token)
}

// Service returns the privileged client. Callers reach it explicitly; no
// request input selects it.
func (p *Provider) Service() *Client {
	return &Client{
		db:      p.service,
		service: true,
		metrics: p.metrics,
		log:     p.log,
	}
}
