// Package maps provides a client for the Google Maps Directions API.
package maps

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	gmaps "googlemaps.github.io/maps"
)

// ErrRouteNotFound is returned when the provider finds no driving route
// between the requested addresses.
var ErrRouteNotFound = errors.New("no route found")

// Route represents a driving route between two addresses.
type Route struct {
	Origin      string        // Canonical start address
	Destination string        // Canonical end address
	Duration    time.Duration // Estimated driving time
}

// directionsAPI is the subset of the Google Maps client used here.
type directionsAPI interface {
	Directions(ctx context.Context, r *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error)
}

// Client is a Google Maps Directions client.
type Client struct {
	api directionsAPI
}

// Config represents Google Maps client configuration.
type Config struct {
	APIKey string
}

// New creates a new Google Maps client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google maps API key is required")
	}

	c, err := gmaps.NewClient(gmaps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create google maps client")
	}

	return &Client{api: c}, nil
}

// GetRoute returns the driving route between two addresses.
// Returns ErrRouteNotFound when the provider has no route for the pair.
func (c *Client) GetRoute(ctx context.Context, origin, destination string) (*Route, error) {
	if origin == "" || destination == "" {
		return nil, errors.New("origin and destination are required")
	}

	routes, _, err := c.api.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        gmaps.TravelModeDriving,
	})
	if err != nil {
		return nil, errors.Wrap(err, "directions request failed")
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrRouteNotFound
	}

	leg := routes[0].Legs[0]
	return &Route{
		Origin:      leg.StartAddress,
		Destination: leg.EndAddress,
		Duration:    leg.Duration,
	}, nil
}
