package engine

import (
	"context"
	"errors"
	"testing"

	"homepanel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(rules []models.Rule, scenes map[string]*models.Scene, clock Clock) (*Runner, *fakePublisher) {
	pub := &fakePublisher{}
	executor := NewExecutor(&fakeSceneStore{scenes: scenes}, pub)
	return NewRunner(&fakeRuleStore{rules: rules}, executor, clock), pub
}

func TestHandleDeviceUpdatedFiresMatchingRule(t *testing.T) {
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 25)
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	err := runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 30))
	require.NoError(t, err)

	cmds := pub.published()
	require.Len(t, cmds, 1)
	assert.Equal(t, "actuator-1", cmds[0].DeviceID)
	assert.Equal(t, 1.0, cmds[0].Value)
}

func TestHandleDeviceUpdatedSkipsDisabledRule(t *testing.T) {
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 25)
	rule.Enabled = false
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 30)))
	assert.Empty(t, pub.published())
}

func TestHandleDeviceUpdatedEmptyConditionsNeverFire(t *testing.T) {
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 25)
	rule.Trigger.Conditions = nil
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 30)))
	assert.Empty(t, pub.published())
}

func TestHandleDeviceUpdatedIgnoresOtherDevices(t *testing.T) {
	rule := thresholdRule("r1", "sensor-Y", models.OpGreaterThan, 0)
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-X", 100)))
	assert.Empty(t, pub.published())
}

func TestHandleDeviceUpdatedRespectsTimeWindow(t *testing.T) {
	from, _ := models.ParseTimeOfDay("22:00")
	to, _ := models.ParseTimeOfDay("06:00")
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 25)
	rule.Trigger.Window = &models.TimeWindow{From: from, To: to}

	t.Run("outside window", func(t *testing.T) {
		runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))
		require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 30)))
		assert.Empty(t, pub.published())
	})

	t.Run("inside wrapped window", func(t *testing.T) {
		runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(23, 0)))
		require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 30)))
		assert.Len(t, pub.published(), 1)
	})
}

func TestHandleDeviceUpdatedSkipsUndeterminableSample(t *testing.T) {
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 25)
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	// no numeric value and no bool hint anywhere
	sample := models.StateSample{DeviceID: "sensor-1"}
	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sample))
	assert.Empty(t, pub.published())
}

func TestHandleDeviceUpdatedBoolNotification(t *testing.T) {
	rule := models.Rule{
		ID:      "r1",
		Enabled: true,
		Trigger: models.Trigger{
			Conditions: []models.Condition{{DeviceID: "switch-1", Operator: models.OpEqual, Value: 1, Unit: "bool"}},
		},
		Action: models.RuleAction{Kind: models.ActionSetDeviceState, DeviceID: "lamp-1", TargetValue: f64(1)},
	}
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	// on/off notification without a numeric payload
	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), models.StateSample{DeviceID: "switch-1"}))
	assert.Len(t, pub.published(), 1)
}

func TestHandleDeviceUpdatedOneBadRuleDoesNotBlockOthers(t *testing.T) {
	bad := thresholdRule("bad", "sensor-1", models.OpGreaterThan, 0)
	bad.Action = models.RuleAction{Kind: models.ActionRunScene, SceneID: "missing"}
	good := thresholdRule("good", "sensor-1", models.OpGreaterThan, 0)

	runner, pub := newTestRunner([]models.Rule{bad, good}, nil, fixedClock(at(12, 0)))
	require.NoError(t, runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 5)))
	assert.Len(t, pub.published(), 1)
}

func TestHandleDeviceUpdatedRuleStoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	pub := &fakePublisher{}
	runner := NewRunner(&fakeRuleStore{err: storeErr}, NewExecutor(&fakeSceneStore{}, pub), fixedClock(at(12, 0)))

	err := runner.HandleDeviceUpdated(context.Background(), sampleOf("sensor-1", 5))
	assert.ErrorIs(t, err, storeErr)
}

func TestHandleDeviceUpdatedObservesCancellation(t *testing.T) {
	rule := thresholdRule("r1", "sensor-1", models.OpGreaterThan, 0)
	runner, pub := newTestRunner([]models.Rule{rule}, nil, fixedClock(at(12, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.HandleDeviceUpdated(ctx, sampleOf("sensor-1", 5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.published())
}
