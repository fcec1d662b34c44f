package services

import (
	"context"
	"errors"

	"github.com/placeboard/placeboard/internal/client/api"
	"github.com/placeboard/placeboard/internal/client/places"
	"go.uber.org/zap"
)

// The original web client sent this placeholder when the widget offered no
// address for a place; the wire shape keeps it.
const fallbackAddress = "TEST"

// LocationService resolves a place selection to its backend location record,
// creating the record on first visit.
type LocationService struct {
	client *api.Client
	logger *zap.Logger
}

// NewLocationService constructs the service.
func NewLocationService(client *api.Client, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{client: client, logger: logger}
}

// GetOrCreate looks the record up by place id and creates it on 404. Any
// other lookup failure is returned without attempting a create, so a flaky
// lookup can never duplicate a record. Losing a create race (409) resolves
// to the record the other writer created.
func (s *LocationService) GetOrCreate(ctx context.Context, selection places.Selection) (api.LocationRecord, error) {
	record, err := s.client.GetLocation(ctx, selection.PlaceID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, api.ErrNotFound) {
		s.logger.Error("location lookup failed, create withheld",
			zap.String("place_id", selection.PlaceID), zap.Error(err))
		return api.LocationRecord{}, err
	}

	address := selection.Address
	if address == "" {
		address = fallbackAddress
	}
	created, err := s.client.CreateLocation(ctx, api.LocationRecord{
		ID:      selection.PlaceID,
		Name:    selection.Name,
		Address: address,
	})
	if err == nil {
		s.logger.Debug("location created", zap.String("place_id", selection.PlaceID))
		return created, nil
	}
	if errors.Is(err, api.ErrConflict) {
		// Another client created the record between our GET and POST.
		return s.client.GetLocation(ctx, selection.PlaceID)
	}
	s.logger.Error("location create failed",
		zap.String("place_id", selection.PlaceID), zap.Error(err))
	return api.LocationRecord{}, err
}
