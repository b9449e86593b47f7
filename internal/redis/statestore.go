package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homepanel/internal/models"

	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long a reading counts as "latest known state".
const stateTTL = time.Hour

// StateStore keeps the latest reading per device under device:<id>.
// It backs the periodic evaluator's state lookups.
type StateStore struct {
	client *redis.Client
}

// NewStateStore creates the store
func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func stateKey(deviceID string) string {
	return fmt.Sprintf("device:%s", deviceID)
}

// GetDeviceState returns the latest known state, (nil, nil) when unknown
func (s *StateStore) GetDeviceState(ctx context.Context, deviceID string) (*models.DeviceState, error) {
	raw, err := s.client.Get(ctx, stateKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state for %s: %w", deviceID, err)
	}
	var state models.DeviceState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", deviceID, err)
	}
	return &state, nil
}

// SetDeviceState records the latest reading for a device
func (s *StateStore) SetDeviceState(ctx context.Context, deviceID string, state models.DeviceState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", deviceID, err)
	}
	return s.client.Set(ctx, stateKey(deviceID), raw, stateTTL).Err()
}
