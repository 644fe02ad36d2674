package ports

import "context"

// CommandClient issues a single fire-and-forget request to the speaker API.
type CommandClient interface {
	Get(ctx context.Context, url string) error
}
