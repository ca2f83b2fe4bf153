package geocheck

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"declaration-service/internal/models"
)

const (
	GeometryPassRate  = 0.80
	SatellitePassRate = 0.75
)

// RandomValidator draws outcomes from fixed pass rates without looking at the
// uploaded data.
type RandomValidator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomValidator uses src when given, otherwise a time-seeded PCG source.
func NewRandomValidator(src rand.Source) *RandomValidator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &RandomValidator{rng: rand.New(src)}
}

func (v *RandomValidator) ValidateGeometry(ctx context.Context, _ []byte) (models.CheckOutcome, error) {
	return v.draw(ctx, GeometryPassRate)
}

func (v *RandomValidator) ValidateSatellite(ctx context.Context, _ []byte) (models.CheckOutcome, error) {
	return v.draw(ctx, SatellitePassRate)
}

func (v *RandomValidator) draw(ctx context.Context, passRate float64) (models.CheckOutcome, error) {
	if err := ctx.Err(); err != nil {
		return models.CheckFail, err
	}

	v.mu.Lock()
	sample := v.rng.Float64()
	v.mu.Unlock()

	if sample < passRate {
		return models.CheckPass, nil
	}
	return models.CheckFail, nil
}
