package ecs

import (
	"go.uber.org/zap"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/handle"
)

// DefaultMaxViewTables bounds how many tables one view may span.
const DefaultMaxViewTables = 64

type options struct {
	alloc         alloc.Allocator
	log           *zap.Logger
	maxViewTables int
	policy        handle.ExpiryPolicy
}

// Option configures a Registry.
type Option func(*options)

// WithAllocator sets the allocator for every pool, table and column the
// registry owns.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMaxViewTables sets the view bound. Values below 1 keep the default.
func WithMaxViewTables(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxViewTables = n
		}
	}
}

// WithExpiryPolicy sets how the entity pool treats slots whose generation
// counter is exhausted.
func WithExpiryPolicy(p handle.ExpiryPolicy) Option {
	return func(o *options) { o.policy = p }
}
