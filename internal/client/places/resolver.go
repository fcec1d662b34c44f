package places

import (
	"context"
	"errors"
)

// ErrNoSelection indicates the provider returned nothing usable for a place:
// a missing identifier or missing geometry. Callers treat it as "no selection
// happened", not as a surfaced failure.
var ErrNoSelection = errors.New("places: no resolvable selection")

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Suggestion is one autocomplete candidate offered for a free-text query.
type Suggestion struct {
	PlaceID     string
	Description string
}

// Selection is a fully resolved place: stable identifier, display name and
// coordinates, plus the formatted address when the provider supplies one.
// Selections are transient; they are consumed once by the location service.
type Selection struct {
	PlaceID     string
	Name        string
	Address     string
	Coordinates Coordinates
}

// Clone dereferences an optional carried selection, reporting whether it is
// usable (present with a place id).
func (s *Selection) Clone() (Selection, bool) {
	if s == nil || s.PlaceID == "" {
		return Selection{}, false
	}
	return *s, true
}

// Resolver turns free-text search into place suggestions and resolves a
// place id to a Selection. Implementations silently drop provider results
// that lack an identifier or geometry.
type Resolver interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
	Resolve(ctx context.Context, placeID string) (Selection, error)
}
