package places

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// GoogleResolver implements Resolver over the Google Places API.
type GoogleResolver struct {
	client *maps.Client
	logger *zap.Logger
}

// NewGoogleResolver constructs a resolver authenticated with the given API key.
func NewGoogleResolver(apiKey string, logger *zap.Logger) (*GoogleResolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleResolver{client: client, logger: logger}, nil
}

// Search returns autocomplete suggestions for the query. Predictions without
// a place id are dropped without comment, mirroring the widget contract.
func (r *GoogleResolver) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	response, err := r.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: query,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(response.Predictions))
	for _, prediction := range response.Predictions {
		if prediction.PlaceID == "" {
			r.logger.Debug("dropping prediction without place id",
				zap.String("description", prediction.Description))
			continue
		}
		suggestions = append(suggestions, Suggestion{
			PlaceID:     prediction.PlaceID,
			Description: prediction.Description,
		})
	}
	return suggestions, nil
}

// Resolve looks a place up by id. A result without an identifier or geometry
// yields ErrNoSelection rather than a partially filled Selection.
func (r *GoogleResolver) Resolve(ctx context.Context, placeID string) (Selection, error) {
	details, err := r.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskPlaceID,
			maps.PlaceDetailsFieldMaskName,
			maps.PlaceDetailsFieldMaskGeometry,
			maps.PlaceDetailsFieldMaskFormattedAddress,
		},
	})
	if err != nil {
		return Selection{}, err
	}

	if details.PlaceID == "" || (details.Geometry.Location == maps.LatLng{}) {
		r.logger.Debug("dropping unresolvable place", zap.String("place_id", placeID))
		return Selection{}, ErrNoSelection
	}

	return Selection{
		PlaceID: details.PlaceID,
		Name:    details.Name,
		Address: details.FormattedAddress,
		Coordinates: Coordinates{
			Lat: details.Geometry.Location.Lat,
			Lng: details.Geometry.Location.Lng,
		},
	}, nil
}
