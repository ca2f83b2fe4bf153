package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"declaration-service/internal/wizard"
	"declaration-service/shared/utils"

	"github.com/redis/go-redis/v9"
)

const wizardKeyPrefix = "wizard--"

// WizardSessionRepository keeps wizard snapshots in redis under a sliding TTL.
type WizardSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewWizardSessionRepository(redisClient *redis.Client, ttl time.Duration) *WizardSessionRepository {
	return &WizardSessionRepository{redisClient: redisClient, ttl: ttl}
}

func wizardKey(sessionID string) string {
	return wizardKeyPrefix + sessionID
}

func (r *WizardSessionRepository) Save(ctx context.Context, state wizard.State) error {
	data, err := utils.SerializeModel(state)
	if err != nil {
		return fmt.Errorf("failed to serialize wizard session: %w", err)
	}
	if err := r.redisClient.Set(ctx, wizardKey(state.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

func (r *WizardSessionRepository) Load(ctx context.Context, sessionID string) (wizard.State, error) {
	data, err := r.redisClient.Get(ctx, wizardKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return wizard.State{}, fmt.Errorf("wizard session %s: %w", sessionID, ErrNotFound)
		}
		return wizard.State{}, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var state wizard.State
	if err := utils.DeserializeModel(data, &state); err != nil {
		return wizard.State{}, fmt.Errorf("failed to deserialize wizard session: %w", err)
	}
	return state, nil
}
