package resilience

import (
	"context"
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead in logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent calls. Values below 1 mean 1.
	MaxConcurrent int
	// OnAcquire is called after a slot is taken. inUse includes the caller.
	OnAcquire func(name string, inUse int)
	// OnRelease is called after a slot is given back. inUse excludes the caller.
	OnRelease func(name string, inUse int)
}

// Bulkhead limits how many calls run at the same time. Callers wait for a
// slot until their context ends.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Execute runs fn once a slot is available.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if b.config.OnAcquire != nil {
		b.config.OnAcquire(b.config.Name, b.InUse())
	}
	defer func() {
		<-b.sem
		if b.config.OnRelease != nil {
			b.config.OnRelease(b.config.Name, b.InUse())
		}
	}()
	return fn()
}

// ExecuteWithResult runs a function that returns a value.
func ExecuteWithResult[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// InUse returns the number of slots currently taken. Under contention the
// value is a snapshot.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}

// MaxConcurrent returns the maximum concurrent calls allowed.
func (b *Bulkhead) MaxConcurrent() int {
	return b.config.MaxConcurrent
}
