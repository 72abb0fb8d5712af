package ladder

import (
	"context"

	"github.com/riskibarqy/overmind/internal/domain/identity"
)

// Fetcher looks up the showcased 1v1 ladder standing for a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator identity.Locator) Result
}
