package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"homepanel/internal/models"
)

type fakeRuleStore struct {
	rules []models.Rule
	err   error
}

func (f *fakeRuleStore) GetAllRules(ctx context.Context) ([]models.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

type fakeSceneStore struct {
	scenes map[string]*models.Scene
	err    error
}

func (f *fakeSceneStore) GetSceneByID(ctx context.Context, id string) (*models.Scene, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scenes[id], nil
}

type fakeStateStore struct {
	states map[string]*models.DeviceState
	errFor map[string]error
}

func (f *fakeStateStore) GetDeviceState(ctx context.Context, deviceID string) (*models.DeviceState, error) {
	if err := f.errFor[deviceID]; err != nil {
		return nil, err
	}
	return f.states[deviceID], nil
}

type fakePublisher struct {
	mu       sync.Mutex
	commands []models.SetStateCommand
	failFor  map[string]bool
}

var errPublish = errors.New("publish failed")

func (f *fakePublisher) PublishCommand(cmd models.SetStateCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[cmd.DeviceID] {
		return errPublish
	}
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakePublisher) published() []models.SetStateCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SetStateCommand(nil), f.commands...)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func sampleOf(deviceID string, value float64) models.StateSample {
	return models.StateSample{DeviceID: deviceID, Value: f64(value)}
}

func thresholdRule(id, deviceID string, op models.CompareOp, value float64) models.Rule {
	return models.Rule{
		ID:      id,
		Name:    "rule " + id,
		Enabled: true,
		Trigger: models.Trigger{
			Conditions: []models.Condition{{DeviceID: deviceID, Operator: op, Value: value}},
		},
		Action: models.RuleAction{
			Kind:        models.ActionSetDeviceState,
			DeviceID:    "actuator-1",
			TargetValue: f64(1),
		},
	}
}
