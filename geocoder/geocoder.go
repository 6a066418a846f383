package geocoder

import (
	"context"
	"errors"
)

// ErrNoResults is returned when an address cannot be resolved at all.
var ErrNoResults = errors.New("no geocoding results for address")

// Location is a resolved address.
type Location struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}
