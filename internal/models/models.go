package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Device represents a device model
type Device struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	RoomID    *string         `json:"room_id"`
	State     json.RawMessage `json:"state"`
	MQTTTopic string          `json:"mqtt_topic"`
	Accepted  bool            `json:"accepted"`
	OwnerID   *string         `json:"owner_id"`
}

// Room groups devices for the UI
type Room struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// CompareOp is the comparison operator of a condition
type CompareOp string

const (
	OpEqual              CompareOp = "eq"
	OpGreaterThan        CompareOp = "gt"
	OpGreaterThanOrEqual CompareOp = "gte"
	OpLessThan           CompareOp = "lt"
	OpLessThanOrEqual    CompareOp = "lte"
)

// UnitBool is the sentinel unit for on/off devices. A state notification
// from a switch may omit the numeric payload entirely; the engine treats
// such a sample as boolean-true.
const UnitBool = "bool"

// Condition compares one device reading against a threshold
type Condition struct {
	DeviceID string    `json:"device_id"`
	Operator CompareOp `json:"operator"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit,omitempty"`
}

// TimeOfDay is a wall-clock time without a date component
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeWindow gates a rule to a time-of-day range. When From > To the
// window wraps midnight: 22:00-06:00 covers late evening and early morning.
type TimeWindow struct {
	From TimeOfDay `json:"from"`
	To   TimeOfDay `json:"to"`
}

// Contains reports whether the wall-clock time of day of t falls inside
// the window. The wrap case is satisfied when now >= From or now <= To.
func (w TimeWindow) Contains(t time.Time) bool {
	now := t.Hour()*60 + t.Minute()
	from, to := w.From.Minutes(), w.To.Minutes()
	if from <= to {
		return now >= from && now <= to
	}
	return now >= from || now <= to
}

// Trigger is the condition set plus optional time window of a rule
type Trigger struct {
	Conditions []Condition `json:"conditions"`
	Window     *TimeWindow `json:"time_window,omitempty"`
}

// ActionKind tags the rule action variant
type ActionKind string

const (
	ActionSetDeviceState ActionKind = "set_device_state"
	ActionRunScene       ActionKind = "run_scene"
)

// RuleAction is the effect of a fired rule: either a direct device command
// or the expansion of a scene. Fields beyond the tagged variant are unset.
type RuleAction struct {
	Kind        ActionKind `json:"kind"`
	DeviceID    string     `json:"device_id,omitempty"`
	TargetValue *float64   `json:"target_value,omitempty"`
	TargetUnit  string     `json:"target_unit,omitempty"`
	SceneID     string     `json:"scene_id,omitempty"`
}

// Rule represents an automation rule
type Rule struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Enabled bool       `json:"enabled"`
	Trigger Trigger    `json:"trigger"`
	Action  RuleAction `json:"action"`
	OwnerID string     `json:"owner_id,omitempty"`
}

// SceneAction is one device target-state inside a scene
type SceneAction struct {
	DeviceID    string  `json:"device_id"`
	TargetValue float64 `json:"target_value"`
	TargetUnit  string  `json:"target_unit,omitempty"`
}

// Scene is a named, ordered bundle of device target-states
type Scene struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Public  bool          `json:"is_public"`
	Actions []SceneAction `json:"actions"`
	OwnerID string        `json:"owner_id,omitempty"`
}

// SceneSchedule runs a scene on a cron expression
type SceneSchedule struct {
	ID             string `json:"id"`
	SceneID        string `json:"scene_id"`
	CronExpression string `json:"cron_expression"`
	Enabled        bool   `json:"enabled"`
}

// StateSample is one observed device reading, either delivered by the
// inbound transport or synthesized from the state store by the periodic
// evaluator. Value is nil for notifications without a numeric payload.
type StateSample struct {
	DeviceID       string   `json:"device_id"`
	Value          *float64 `json:"value"`
	Unit           *string  `json:"unit"`
	Malfunctioning *bool    `json:"malfunctioning"`
}

// DeviceState is the latest known reading kept in the state store
type DeviceState struct {
	Value          *float64  `json:"value"`
	Unit           *string   `json:"unit"`
	Malfunctioning *bool     `json:"malfunctioning"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetStateCommand is the outbound "set device state" message
type SetStateCommand struct {
	DeviceID string  `json:"device_id"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}

// User represents an account
type User struct {
	ID    string `json:"id"`
	Name  string `json:"username"`
	Email string `json:"email"`
}
