package engine

import (
	"context"
	"log"
	"strings"

	"homepanel/internal/models"
)

// Executor turns a matched rule's action into set-state commands. All
// failure modes are absorbed and logged: a broken action configuration is
// a permanent no-op, never an error for the caller.
type Executor struct {
	scenes    SceneStore
	publisher CommandPublisher
}

// NewExecutor creates an executor
func NewExecutor(scenes SceneStore, publisher CommandPublisher) *Executor {
	return &Executor{scenes: scenes, publisher: publisher}
}

// Execute runs the rule's action
func (e *Executor) Execute(ctx context.Context, rule models.Rule) {
	switch rule.Action.Kind {
	case models.ActionSetDeviceState:
		e.setDeviceState(rule)
	case models.ActionRunScene:
		e.RunScene(ctx, rule.Action.SceneID)
	default:
		log.Printf("ENGINE: Rule %s has unknown action kind %q, skipping", rule.ID, rule.Action.Kind)
	}
}

func (e *Executor) setDeviceState(rule models.Rule) {
	deviceID := strings.TrimSpace(rule.Action.DeviceID)
	if deviceID == "" || rule.Action.TargetValue == nil {
		log.Printf("ENGINE: Rule %s has invalid set_device_state action (device %q), skipping", rule.ID, rule.Action.DeviceID)
		return
	}
	cmd := models.SetStateCommand{
		DeviceID: deviceID,
		Value:    *rule.Action.TargetValue,
		Unit:     rule.Action.TargetUnit,
	}
	if err := e.publisher.PublishCommand(cmd); err != nil {
		log.Printf("ENGINE: Failed to publish command for device %s: %v", deviceID, err)
	}
}

// RunScene expands a scene into one command per entry, in stored order.
// Entries with a blank device id are skipped; a publish failure on one
// entry does not stop the rest.
func (e *Executor) RunScene(ctx context.Context, sceneID string) {
	scene, err := e.scenes.GetSceneByID(ctx, sceneID)
	if err != nil {
		log.Printf("ENGINE: Failed to load scene %s: %v", sceneID, err)
		return
	}
	if scene == nil {
		log.Printf("ENGINE: Scene %s not found, skipping", sceneID)
		return
	}

	for i, action := range scene.Actions {
		deviceID := strings.TrimSpace(action.DeviceID)
		if deviceID == "" {
			log.Printf("ENGINE: Scene %s entry %d has invalid device id, skipping", scene.ID, i)
			continue
		}
		cmd := models.SetStateCommand{
			DeviceID: deviceID,
			Value:    action.TargetValue,
			Unit:     action.TargetUnit,
		}
		if err := e.publisher.PublishCommand(cmd); err != nil {
			log.Printf("ENGINE: Scene %s entry %d publish failed: %v", scene.ID, i, err)
		}
	}
}
