package engine

import (
	"context"
	"errors"
	"testing"

	"homepanel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSetDeviceState(t *testing.T) {
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{}, pub)

	rule := models.Rule{
		ID: "r1",
		Action: models.RuleAction{
			Kind:        models.ActionSetDeviceState,
			DeviceID:    "heater-1",
			TargetValue: f64(21.5),
			TargetUnit:  "°C",
		},
	}
	executor.Execute(context.Background(), rule)

	cmds := pub.published()
	require.Len(t, cmds, 1)
	assert.Equal(t, models.SetStateCommand{DeviceID: "heater-1", Value: 21.5, Unit: "°C"}, cmds[0])
}

func TestExecuteSetDeviceStateInvalidConfigIsNoop(t *testing.T) {
	tests := []struct {
		name   string
		action models.RuleAction
	}{
		{"blank device id", models.RuleAction{Kind: models.ActionSetDeviceState, DeviceID: "  ", TargetValue: f64(1)}},
		{"missing target value", models.RuleAction{Kind: models.ActionSetDeviceState, DeviceID: "heater-1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{}
			executor := NewExecutor(&fakeSceneStore{}, pub)
			executor.Execute(context.Background(), models.Rule{ID: "r1", Action: tc.action})
			assert.Empty(t, pub.published())
		})
	}
}

func TestExecuteRunSceneExpandsEntriesInOrder(t *testing.T) {
	scene := &models.Scene{
		ID:   "evening",
		Name: "Evening",
		Actions: []models.SceneAction{
			{DeviceID: "lamp-1", TargetValue: 1},
			{DeviceID: "lamp-2", TargetValue: 0.4, TargetUnit: "%"},
			{DeviceID: "blinds-1", TargetValue: 0},
		},
	}
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{scenes: map[string]*models.Scene{"evening": scene}}, pub)

	rule := models.Rule{ID: "r1", Action: models.RuleAction{Kind: models.ActionRunScene, SceneID: "evening"}}
	executor.Execute(context.Background(), rule)

	cmds := pub.published()
	require.Len(t, cmds, 3)
	assert.Equal(t, "lamp-1", cmds[0].DeviceID)
	assert.Equal(t, "lamp-2", cmds[1].DeviceID)
	assert.Equal(t, "blinds-1", cmds[2].DeviceID)
}

func TestExecuteRunSceneSkipsInvalidEntry(t *testing.T) {
	scene := &models.Scene{
		ID: "partial",
		Actions: []models.SceneAction{
			{DeviceID: "lamp-1", TargetValue: 1},
			{DeviceID: "   ", TargetValue: 1},
			{DeviceID: "lamp-3", TargetValue: 1},
		},
	}
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{scenes: map[string]*models.Scene{"partial": scene}}, pub)

	executor.RunScene(context.Background(), "partial")

	cmds := pub.published()
	require.Len(t, cmds, 2)
	assert.Equal(t, "lamp-1", cmds[0].DeviceID)
	assert.Equal(t, "lamp-3", cmds[1].DeviceID)
}

func TestExecuteRunScenePublishFailureDoesNotStopRest(t *testing.T) {
	scene := &models.Scene{
		ID: "flaky",
		Actions: []models.SceneAction{
			{DeviceID: "lamp-1", TargetValue: 1},
			{DeviceID: "lamp-2", TargetValue: 1},
		},
	}
	pub := &fakePublisher{failFor: map[string]bool{"lamp-1": true}}
	executor := NewExecutor(&fakeSceneStore{scenes: map[string]*models.Scene{"flaky": scene}}, pub)

	executor.RunScene(context.Background(), "flaky")

	cmds := pub.published()
	require.Len(t, cmds, 1)
	assert.Equal(t, "lamp-2", cmds[0].DeviceID)
}

func TestExecuteRunSceneMissingSceneIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{}, pub)
	executor.RunScene(context.Background(), "ghost")
	assert.Empty(t, pub.published())
}

func TestExecuteRunSceneStoreFailureIsAbsorbed(t *testing.T) {
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{err: errors.New("timeout")}, pub)
	executor.RunScene(context.Background(), "any")
	assert.Empty(t, pub.published())
}

func TestExecuteUnknownActionKindIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{}, pub)
	executor.Execute(context.Background(), models.Rule{ID: "r1", Action: models.RuleAction{Kind: "send_pigeon"}})
	assert.Empty(t, pub.published())
}
