package health

import (
	"github.com/go-chi/chi/v5"
	"github.com/heptiolabs/healthcheck"
)

type opts struct {
	ChiMux          *chi.Mux
	readinessChecks map[string]healthcheck.Check
}

type Opt func(*opts)

func WithChiMux(mux *chi.Mux) Opt {
	return func(o *opts) {
		o.ChiMux = mux
	}
}

// WithReadinessCheck adds an upstream check, e.g. "is the API server
// environment present at all".
func WithReadinessCheck(name string, check healthcheck.Check) Opt {
	return func(o *opts) {
		if o.readinessChecks == nil {
			o.readinessChecks = map[string]healthcheck.Check{}
		}
		o.readinessChecks[name] = check
	}
}
