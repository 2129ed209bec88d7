package platform

import (
	"context"
	"time"

	"github.com/aretw0/strata/pkg/core"
)

// New opens the store at uri and wraps it in a core.Service.
//
//	svc, err := strata.New(ctx, "./vault", strata.WithReadOnly(true))
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	store, err := Init(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	var svcOpts []core.ServiceOption
	if clock, ok := o.config["clock"].(func() time.Time); ok {
		svcOpts = append(svcOpts, core.WithServiceClock(clock))
	}
	return core.NewService(store, svcOpts...), nil
}
