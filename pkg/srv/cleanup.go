package srv

import (
	"context"
	"errors"
)

// cleanupService releases resources on shutdown and does nothing on start.
type cleanupService struct {
	cleanups []func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

// Shutdown runs the cleanups in reverse registration order and reports
// every failure.
func (c *cleanupService) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		if c.cleanups[i] == nil {
			continue
		}
		if err := c.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewCleanup(fns ...func() error) Service {
	return &cleanupService{cleanups: fns}
}
