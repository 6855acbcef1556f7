package maps

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmaps "googlemaps.github.io/maps"
)

type fakeDirectionsAPI struct {
	routes []gmaps.Route
	err    error
}

func (f *fakeDirectionsAPI) Directions(ctx context.Context, r *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error) {
	return f.routes, nil, f.err
}

func TestClient_GetRoute(t *testing.T) {
	route := gmaps.Route{
		Legs: []*gmaps.Leg{
			{
				StartAddress: "A-canonical",
				EndAddress:   "B-canonical",
				Duration:     30 * time.Minute,
			},
		},
	}

	tests := []struct {
		name        string
		api         *fakeDirectionsAPI
		origin      string
		destination string
		want        *Route
		wantErr     error
	}{
		{
			name:        "route found",
			api:         &fakeDirectionsAPI{routes: []gmaps.Route{route}},
			origin:      "A",
			destination: "B",
			want: &Route{
				Origin:      "A-canonical",
				Destination: "B-canonical",
				Duration:    30 * time.Minute,
			},
		},
		{
			name:        "no routes returned",
			api:         &fakeDirectionsAPI{routes: nil},
			origin:      "A",
			destination: "B",
			wantErr:     ErrRouteNotFound,
		},
		{
			name:        "route with no legs",
			api:         &fakeDirectionsAPI{routes: []gmaps.Route{{}}},
			origin:      "A",
			destination: "B",
			wantErr:     ErrRouteNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{api: tt.api}
			got, err := c.GetRoute(context.Background(), tt.origin, tt.destination)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GetRoute_ProviderError(t *testing.T) {
	c := &Client{api: &fakeDirectionsAPI{err: errors.New("OVER_QUERY_LIMIT")}}
	_, err := c.GetRoute(context.Background(), "A", "B")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRouteNotFound))
}

func TestClient_GetRoute_EmptyAddresses(t *testing.T) {
	c := &Client{api: &fakeDirectionsAPI{}}
	_, err := c.GetRoute(context.Background(), "", "B")
	require.Error(t, err)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
