package geocode

import (
	"appliance-intake-service/internal/domain"
	"context"
	"fmt"
	"sync"
)

type MockPlace struct {
	Address string
	X, Y    float64
	Label   string
}

// MockGeocoder resolves a fixed set of addresses; anything else is ErrNotFound.
// Errors registered with Fail take precedence over places.
type MockGeocoder struct {
	mu     sync.Mutex
	places map[string]domain.GeocodeResult
	errs   map[string]error
	calls  []string
}

func NewMockGeocoder(places []MockPlace) *MockGeocoder {
	m := make(map[string]domain.GeocodeResult, len(places))
	for _, p := range places {
		m[p.Address] = domain.GeocodeResult{
			Coordinates: domain.Coordinates{X: p.X, Y: p.Y},
			Label:       p.Label,
		}
	}
	return &MockGeocoder{places: m, errs: map[string]error{}}
}

// Fail makes lookups of address return err.
func (g *MockGeocoder) Fail(address string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[address] = err
}

// Calls returns the addresses looked up so far, in order.
func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, address)
	err, failing := g.errs[address]
	r, ok := g.places[address]
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.GeocodeResult{}, err
	}
	if failing {
		return domain.GeocodeResult{}, err
	}
	if !ok {
		return domain.GeocodeResult{}, fmt.Errorf("mock geocode %q: %w", address, domain.ErrNotFound)
	}

	return r, nil
}
