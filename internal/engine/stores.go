package engine

import (
	"context"
	"time"

	"homepanel/internal/models"
)

// RuleStore provides read access to automation rules. CRUD beyond GetAll
// belongs to the web layer; the engine only scans.
type RuleStore interface {
	GetAllRules(ctx context.Context) ([]models.Rule, error)
}

// SceneStore resolves a scene referenced by a run_scene action.
// A missing scene is (nil, nil), not an error.
type SceneStore interface {
	GetSceneByID(ctx context.Context, id string) (*models.Scene, error)
}

// DeviceStateStore exposes the latest known reading per device.
// An unknown device is (nil, nil), not an error.
type DeviceStateStore interface {
	GetDeviceState(ctx context.Context, deviceID string) (*models.DeviceState, error)
}

// CommandPublisher emits set-state commands downstream. Fire-and-forget:
// no acknowledgment is awaited.
type CommandPublisher interface {
	PublishCommand(cmd models.SetStateCommand) error
}

// Clock returns the current time. Injected so tests can pin it.
type Clock func() time.Time
