package sources

import (
	"context"
	"errors"

	"github.com/xscout/xscout/internal/models"
)

// Provider is the contract all post sources implement. A provider with
// missing or invalid credentials reports Enabled() == false and returns
// no results from Search without touching the network.
type Provider interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
}

// ErrRateLimited signals upstream throttling (an HTTP 429 equivalent).
// Providers wrap it so the scanner can stop querying them for the rest of
// the cycle; all other failures are ordinary errors the scanner logs and
// moves past. Check with errors.Is.
var ErrRateLimited = errors.New("rate limited by upstream")
