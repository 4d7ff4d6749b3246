// Package workerpool wraps ants with a small interface used for issuing
// concurrent namespace loads.
package workerpool

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"
)

// Pool defines the common methods for worker pool operations.
type Pool interface {
	Submit(ctx context.Context, task func()) error
	Shutdown()
}

// Options defines configurable options for a worker pool.
type Options struct {
	Capacity       int
	ExpiryDuration time.Duration
	Nonblocking    bool
	PreAlloc       bool
	PanicHandler   func(any)
	Logger         *util.LogEntry
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithCapacity sets the capacity of the pool.
func WithCapacity(capacity int) Option {
	return func(opts *Options) {
		opts.Capacity = capacity
	}
}

// WithExpiryDuration sets the expiry duration for idle workers.
func WithExpiryDuration(duration time.Duration) Option {
	return func(opts *Options) {
		opts.ExpiryDuration = duration
	}
}

// WithNonblocking sets the non-blocking option for the pool.
func WithNonblocking(nonblocking bool) Option {
	return func(opts *Options) {
		opts.Nonblocking = nonblocking
	}
}

// WithPreAlloc pre-allocates memory for the pool.
func WithPreAlloc(preAlloc bool) Option {
	return func(opts *Options) {
		opts.PreAlloc = preAlloc
	}
}

// WithPanicHandler sets a panic handler for the pool.
func WithPanicHandler(handler func(any)) Option {
	return func(opts *Options) {
		opts.PanicHandler = handler
	}
}

// WithLogger sets a logger for the pool.
func WithLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

const defaultCapacity = 16

// New builds a worker pool from the supplied options.
func New(ctx context.Context, opts ...Option) (Pool, error) {
	wopts := &Options{
		Capacity:    defaultCapacity,
		Nonblocking: false,
	}
	for _, opt := range opts {
		opt(wopts)
	}
	if wopts.Logger == nil {
		wopts.Logger = util.Log(ctx)
	}

	antsOpts := []ants.Option{
		ants.WithNonblocking(wopts.Nonblocking),
		ants.WithLogger(wopts.Logger),
	}
	if wopts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(wopts.ExpiryDuration))
	}
	if wopts.PreAlloc {
		antsOpts = append(antsOpts, ants.WithPreAlloc(wopts.PreAlloc))
	}
	if wopts.PanicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(wopts.PanicHandler))
	}

	p, err := ants.NewPool(wopts.Capacity, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &poolWrapper{pool: p}, nil
}

// poolWrapper adapts *ants.Pool to the Pool interface.
type poolWrapper struct {
	pool *ants.Pool
}

func (w *poolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.pool.Submit(task)
}

func (w *poolWrapper) Shutdown() {
	w.pool.Release()
}
