package ports

import (
	"appliance-intake-service/internal/domain"
	"context"
)

// Contract for resolving free-form address text to a coordinate and label.
type Geocoder interface {
	// Return the best match, domain.ErrNotFound when nothing matched,
	// or a *domain.UpstreamError when the provider failed.
	Geocode(ctx context.Context, address string) (domain.GeocodeResult, error)
}
