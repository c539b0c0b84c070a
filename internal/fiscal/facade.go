package fiscal

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Breaker guards calls to the gateway. infra.CircuitBreaker satisfies it.
type Breaker interface {
	Execute(fn func() error) error
}

// Facade hides which issuer is active and turns every issuance into an
// Outcome. It never returns an error from Issue.
type Facade struct {
	mode    string
	issuer  Issuer
	breaker Breaker
}

// NewFacade wires issuer for mode. breaker may be nil.
func NewFacade(mode string, issuer Issuer, breaker Breaker) *Facade {
	if mode != ModeGateway {
		mode = ModeMock
	}
	return &Facade{mode: mode, issuer: issuer, breaker: breaker}
}

func (f *Facade) Mode() string { return f.mode }

// Issue emits the document for req.
func (f *Facade) Issue(ctx context.Context, req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("sale_id", req.SaleID.String()).Msg("fiscal: issuer panicked")
			out = Outcome{Kind: Failed, Err: errors.New("fiscal: issuer panicked")}
		}
	}()

	var auth *Authorization
	err := f.call(func() error {
		var err error
		auth, err = f.issuer.Issue(ctx, req)
		return err
	})
	if err != nil {
		return Outcome{Kind: Failed, Err: err}
	}
	if auth == nil {
		return Outcome{Kind: Failed, Err: errors.New("fiscal: empty authorization")}
	}
	if f.mode == ModeMock {
		return Outcome{Kind: Mocked, Authorization: auth}
	}
	return Outcome{Kind: Issued, Authorization: auth}
}

// Cancel forwards a cancellation to the issuer.
func (f *Facade) Cancel(ctx context.Context, accessKey, protocol, reason string) error {
	return f.call(func() error {
		return f.issuer.Cancel(ctx, accessKey, protocol, reason)
	})
}

func (f *Facade) call(fn func() error) error {
	if f.breaker == nil || f.mode == ModeMock {
		return fn()
	}
	return f.breaker.Execute(fn)
}
