package geocoder

import (
	"context"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves free-text addresses through the Google Maps
// Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleGeocoder{client: client}, nil
}

func (o *GoogleGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	results, err := o.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return Location{}, err
	}
	if len(results) == 0 {
		return Location{}, ErrNoResults
	}

	// the API orders results by relevance, take the best match
	best := results[0]
	return Location{
		Lat:              best.Geometry.Location.Lat,
		Lng:              best.Geometry.Location.Lng,
		FormattedAddress: best.FormattedAddress,
	}, nil
}
