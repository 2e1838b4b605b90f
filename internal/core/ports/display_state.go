package ports

import "context"

// StateFetcher retrieves the compositor's current display state.
type StateFetcher interface {
	// GetCurrentState performs one blocking call and returns the raw reply
	// body exactly as the transport decoded it.
	GetCurrentState(ctx context.Context) ([]interface{}, error)
}
