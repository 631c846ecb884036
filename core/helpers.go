package authoring

import (
	"context"
	"fmt"
)

type requestRun func(context.Context) error

// panicSafeRun turns a panic inside run into an error, so a misbehaving
// backend or callback ends the request on the error path instead of taking
// the host down.
func panicSafeRun(name string, run func(context.Context) error) requestRun {
	return func(ctx context.Context) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%s panicked: %v", name, recovered)
			}
		}()

		if err = run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", name, err)
		}

		return nil
	}
}
