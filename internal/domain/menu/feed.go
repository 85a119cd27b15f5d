package menu

import (
	"context"
	"errors"
)

// ErrFeedUnavailable indicates the provider endpoint could not be reached or
// its response could not be parsed. An empty-but-successful response is not
// an error.
var ErrFeedUnavailable = errors.New("menu feed unavailable")

// Feed fetches raw, unvalidated menu candidates from the external provider.
// One call returns the provider's full published date range for the given
// slot; the client performs no retries, that is the orchestrator's job.
type Feed interface {
	Fetch(ctx context.Context, cityID int, slot Slot) ([]*Menu, error)
}
