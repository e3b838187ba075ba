package embedder

import "context"

// Embedder maps text to a fixed-dimension vector. A provider makes a
// single attempt per call; retries, if any, belong to the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
