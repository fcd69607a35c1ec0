package panicerr

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/panics"
)

// SafeContext turns a panic in fn into an error returned from the wrapper.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := Call(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		return err
	}
}

// Call runs fn and converts a panic into an error. The zero value is returned
// alongside a recovered panic.
func Call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var (
		catcher panics.Catcher
		v       T
		err     error
	)
	catcher.Try(func() {
		v, err = fn(ctx)
	})
	if r := catcher.Recovered(); r != nil {
		var zero T
		return zero, r.AsError()
	}
	return v, err
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var rec *panics.ErrRecovered
	return errors.As(err, &rec)
}
