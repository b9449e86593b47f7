package engine

import (
	"math"
	"strings"

	"homepanel/internal/models"
)

// epsilon absorbs floating-point noise on eq/gte/lte comparisons.
const epsilon = 1e-9

// ComparableValue derives the numeric value of a sample for comparison.
// An explicit numeric payload wins. Without one, a sample is treated as
// boolean-true (1) when either its own unit or the condition referencing
// its device carries the "bool" sentinel; switch-type devices send bare
// on/off notifications this way. Otherwise the sample cannot be evaluated
// and ok is false.
func ComparableValue(sample models.StateSample, conditions []models.Condition) (float64, bool) {
	if sample.Value != nil {
		return *sample.Value, true
	}
	if sample.Unit != nil && strings.EqualFold(*sample.Unit, models.UnitBool) {
		return 1, true
	}
	for _, cond := range conditions {
		if strings.EqualFold(cond.DeviceID, sample.DeviceID) && strings.EqualFold(cond.Unit, models.UnitBool) {
			return 1, true
		}
	}
	return 0, false
}

// unitsCompatible reports whether an observed unit satisfies the unit a
// condition expects. An empty expectation matches anything, and a "bool"
// expectation tolerates a missing unit (on/off notifications often omit it).
func unitsCompatible(expected string, actual *string) bool {
	if expected == "" {
		return true
	}
	if actual == nil || *actual == "" {
		return strings.EqualFold(expected, models.UnitBool)
	}
	return strings.EqualFold(expected, *actual)
}

// conditionHolds applies the condition's operator to the comparable value.
func conditionHolds(cond models.Condition, value float64) bool {
	switch cond.Operator {
	case models.OpEqual:
		return math.Abs(value-cond.Value) <= epsilon
	case models.OpGreaterThan:
		return value > cond.Value
	case models.OpGreaterThanOrEqual:
		return value > cond.Value || math.Abs(value-cond.Value) <= epsilon
	case models.OpLessThan:
		return value < cond.Value
	case models.OpLessThanOrEqual:
		return value < cond.Value || math.Abs(value-cond.Value) <= epsilon
	}
	return false
}

// AreConditionsSatisfied reports whether a single-device sample satisfies
// every condition of a rule. Every condition must reference the sampled
// device (case-insensitive): a rule whose conditions span distinct devices
// can never be satisfied by one sample, so multi-device AND rules are
// unsatisfiable by construction. An empty condition list never matches.
func AreConditionsSatisfied(conditions []models.Condition, sample models.StateSample, value float64) bool {
	if len(conditions) == 0 {
		return false
	}
	for _, cond := range conditions {
		if !strings.EqualFold(cond.DeviceID, sample.DeviceID) {
			return false
		}
		if !unitsCompatible(cond.Unit, sample.Unit) {
			return false
		}
		if !conditionHolds(cond, value) {
			return false
		}
	}
	return true
}

// referencesDevice is the cheap prefilter: does any condition of the rule
// mention this device at all.
func referencesDevice(conditions []models.Condition, deviceID string) bool {
	for _, cond := range conditions {
		if strings.EqualFold(cond.DeviceID, deviceID) {
			return true
		}
	}
	return false
}
