// Package geocheck provides the geometry and satellite checks run against an
// uploaded plot GeoJSON.
package geocheck

import (
	"context"
	"fmt"

	"declaration-service/internal/models"
)

const (
	ModeRandom   = "random"
	ModeGeometry = "geometry"
	ModeAI       = "ai"
)

type GeometryChecker interface {
	ValidateGeometry(ctx context.Context, data []byte) (models.CheckOutcome, error)
}

type SatelliteChecker interface {
	ValidateSatellite(ctx context.Context, data []byte) (models.CheckOutcome, error)
}

// Validator runs both stages. A non-nil error is treated as a failed stage by
// callers.
type Validator interface {
	GeometryChecker
	SatelliteChecker
}

// NewValidator builds the validator for mode. satellite is only consulted in
// ai mode and must be non-nil there.
func NewValidator(mode string, random *RandomValidator, satellite SatelliteChecker) (Validator, error) {
	if random == nil {
		random = NewRandomValidator(nil)
	}

	switch mode {
	case "", ModeRandom:
		return random, nil
	case ModeGeometry:
		return &GeometryValidator{Satellite: random}, nil
	case ModeAI:
		if satellite == nil {
			return nil, fmt.Errorf("geo validation mode %q requires a satellite checker", mode)
		}
		return &GeometryValidator{Satellite: satellite}, nil
	default:
		return nil, fmt.Errorf("unknown geo validation mode %q", mode)
	}
}

// Static always returns the configured outcomes. Used for demos and tests.
type Static struct {
	Geometry  models.CheckOutcome
	Satellite models.CheckOutcome
	Err       error
}

func (s Static) ValidateGeometry(context.Context, []byte) (models.CheckOutcome, error) {
	return s.Geometry, s.Err
}

func (s Static) ValidateSatellite(context.Context, []byte) (models.CheckOutcome, error) {
	return s.Satellite, s.Err
}
