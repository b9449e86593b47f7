package engine

import (
	"testing"

	"homepanel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparableValue(t *testing.T) {
	conds := []models.Condition{{DeviceID: "lamp-1", Operator: models.OpEqual, Value: 1, Unit: "bool"}}

	t.Run("explicit value wins", func(t *testing.T) {
		v, ok := ComparableValue(models.StateSample{DeviceID: "lamp-1", Value: f64(0)}, conds)
		require.True(t, ok)
		assert.Equal(t, 0.0, v)
	})

	t.Run("bool sample unit implies true", func(t *testing.T) {
		v, ok := ComparableValue(models.StateSample{DeviceID: "x", Unit: str("BOOL")}, nil)
		require.True(t, ok)
		assert.Equal(t, 1.0, v)
	})

	t.Run("bool condition unit implies true", func(t *testing.T) {
		v, ok := ComparableValue(models.StateSample{DeviceID: "LAMP-1"}, conds)
		require.True(t, ok)
		assert.Equal(t, 1.0, v)
	})

	t.Run("bool condition on other device does not apply", func(t *testing.T) {
		_, ok := ComparableValue(models.StateSample{DeviceID: "other"}, conds)
		assert.False(t, ok)
	})

	t.Run("no value and no bool hint", func(t *testing.T) {
		_, ok := ComparableValue(models.StateSample{DeviceID: "sensor-1", Unit: str("°C")}, nil)
		assert.False(t, ok)
	})
}

func TestConditionHolds(t *testing.T) {
	tests := []struct {
		name  string
		op    models.CompareOp
		limit float64
		value float64
		want  bool
	}{
		{"gte within epsilon above", models.OpGreaterThanOrEqual, 10, 10.0000000001, true},
		{"gte clearly below", models.OpGreaterThanOrEqual, 10, 9, false},
		{"eq within epsilon", models.OpEqual, 1, 1 + 1e-10, true},
		{"eq outside epsilon", models.OpEqual, 1, 1.001, false},
		{"lte within epsilon below", models.OpLessThanOrEqual, 10, 10.0000000001, true},
		{"gt strict", models.OpGreaterThan, 10, 10, false},
		{"gt above", models.OpGreaterThan, 10, 10.5, true},
		{"lt strict", models.OpLessThan, 10, 10, false},
		{"lt below", models.OpLessThan, 10, 9.5, true},
		{"unknown operator", models.CompareOp("between"), 10, 10, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cond := models.Condition{DeviceID: "d", Operator: tc.op, Value: tc.limit}
			assert.Equal(t, tc.want, conditionHolds(cond, tc.value))
		})
	}
}

func TestAreConditionsSatisfied(t *testing.T) {
	t.Run("empty condition list never matches", func(t *testing.T) {
		assert.False(t, AreConditionsSatisfied(nil, sampleOf("d", 1), 1))
	})

	t.Run("device id matched case-insensitively", func(t *testing.T) {
		conds := []models.Condition{{DeviceID: "Sensor-1", Operator: models.OpGreaterThan, Value: 20}}
		assert.True(t, AreConditionsSatisfied(conds, sampleOf("sensor-1", 25), 25))
	})

	t.Run("condition on a different device fails the rule", func(t *testing.T) {
		conds := []models.Condition{
			{DeviceID: "sensor-1", Operator: models.OpGreaterThan, Value: 20},
			{DeviceID: "sensor-2", Operator: models.OpGreaterThan, Value: 20},
		}
		assert.False(t, AreConditionsSatisfied(conds, sampleOf("sensor-1", 25), 25))
	})

	t.Run("unit mismatch fails", func(t *testing.T) {
		conds := []models.Condition{{DeviceID: "s", Operator: models.OpGreaterThan, Value: 20, Unit: "°C"}}
		sample := models.StateSample{DeviceID: "s", Value: f64(25), Unit: str("%")}
		assert.False(t, AreConditionsSatisfied(conds, sample, 25))
	})

	t.Run("empty expected unit matches any sample unit", func(t *testing.T) {
		conds := []models.Condition{{DeviceID: "s", Operator: models.OpGreaterThan, Value: 20}}
		sample := models.StateSample{DeviceID: "s", Value: f64(25), Unit: str("°C")}
		assert.True(t, AreConditionsSatisfied(conds, sample, 25))
	})

	t.Run("bool unit tolerates missing sample unit", func(t *testing.T) {
		conds := []models.Condition{{DeviceID: "sw", Operator: models.OpEqual, Value: 1, Unit: "bool"}}
		sample := models.StateSample{DeviceID: "sw"}
		value, ok := ComparableValue(sample, conds)
		require.True(t, ok)
		assert.True(t, AreConditionsSatisfied(conds, sample, value))
	})

	t.Run("case-insensitive unit match", func(t *testing.T) {
		conds := []models.Condition{{DeviceID: "s", Operator: models.OpGreaterThan, Value: 20, Unit: "Lux"}}
		sample := models.StateSample{DeviceID: "s", Value: f64(25), Unit: str("lux")}
		assert.True(t, AreConditionsSatisfied(conds, sample, 25))
	})
}

func TestTimeWindowContains(t *testing.T) {
	window := func(from, to string) models.TimeWindow {
		f, err := models.ParseTimeOfDay(from)
		require.NoError(t, err)
		tt, err := models.ParseTimeOfDay(to)
		require.NoError(t, err)
		return models.TimeWindow{From: f, To: tt}
	}

	t.Run("plain window", func(t *testing.T) {
		w := window("08:00", "17:00")
		assert.True(t, w.Contains(at(12, 0)))
		assert.False(t, w.Contains(at(20, 0)))
		assert.True(t, w.Contains(at(8, 0)))
		assert.True(t, w.Contains(at(17, 0)))
	})

	t.Run("window wrapping midnight", func(t *testing.T) {
		w := window("22:00", "06:00")
		assert.True(t, w.Contains(at(23, 0)))
		assert.True(t, w.Contains(at(5, 0)))
		assert.False(t, w.Contains(at(12, 0)))
	})
}
