package exports

import (
	"context"

	"github.com/pwnholic/taskcard/internal/render"
)

// WithFixedCanvas forces region to size for the duration of fn. The
// original style is put back on every exit path, including panics and
// context cancellation inside fn.
func WithFixedCanvas(ctx context.Context, region Region, size render.Style, fn func(context.Context) error) error {
	original := region.Style()
	region.SetStyle(size)
	defer region.SetStyle(original)

	return fn(ctx)
}
