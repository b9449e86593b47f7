package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"homepanel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetAllRules fetches all rules in insertion order
func (d *DB) GetAllRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := d.pool.Query(ctx, "SELECT id, name, enabled, trigger, action, owner_id FROM rules ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRuleByID fetches a rule, (nil, nil) when absent
func (d *DB) GetRuleByID(ctx context.Context, id string) (*models.Rule, error) {
	row := d.pool.QueryRow(ctx, "SELECT id, name, enabled, trigger, action, owner_id FROM rules WHERE id = $1", id)
	r, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AddRule inserts a rule, assigning an id when absent
func (d *DB) AddRule(ctx context.Context, rule *models.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	trigger, action, err := marshalRule(rule)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		"INSERT INTO rules (id, name, enabled, trigger, action, owner_id) VALUES ($1, $2, $3, $4, $5, $6)",
		rule.ID, rule.Name, rule.Enabled, trigger, action, rule.OwnerID)
	return err
}

// UpdateRule replaces a rule's definition
func (d *DB) UpdateRule(ctx context.Context, rule *models.Rule) error {
	trigger, action, err := marshalRule(rule)
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx,
		"UPDATE rules SET name = $1, enabled = $2, trigger = $3, action = $4 WHERE id = $5 AND owner_id = $6",
		rule.Name, rule.Enabled, trigger, action, rule.ID, rule.OwnerID)
	return err
}

// DeleteRule removes a rule
func (d *DB) DeleteRule(ctx context.Context, id, ownerID string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM rules WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}

func marshalRule(rule *models.Rule) (trigger, action []byte, err error) {
	trigger, err = json.Marshal(rule.Trigger)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal trigger: %w", err)
	}
	action, err = json.Marshal(rule.Action)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal action: %w", err)
	}
	return trigger, action, nil
}

func scanRule(row pgx.Row) (models.Rule, error) {
	var r models.Rule
	var trigger, action []byte
	if err := row.Scan(&r.ID, &r.Name, &r.Enabled, &trigger, &action, &r.OwnerID); err != nil {
		return r, err
	}
	if err := json.Unmarshal(trigger, &r.Trigger); err != nil {
		return r, fmt.Errorf("rule %s trigger: %w", r.ID, err)
	}
	if err := json.Unmarshal(action, &r.Action); err != nil {
		return r, fmt.Errorf("rule %s action: %w", r.ID, err)
	}
	return r, nil
}

// GetSceneByID fetches a scene, (nil, nil) when absent
func (d *DB) GetSceneByID(ctx context.Context, id string) (*models.Scene, error) {
	var s models.Scene
	var actions []byte
	err := d.pool.QueryRow(ctx, "SELECT id, name, is_public, actions, owner_id FROM scenes WHERE id = $1", id).
		Scan(&s.ID, &s.Name, &s.Public, &actions, &s.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(actions, &s.Actions); err != nil {
		return nil, fmt.Errorf("scene %s actions: %w", s.ID, err)
	}
	return &s, nil
}

// GetScenesForOwner fetches the owner's scenes plus public ones
func (d *DB) GetScenesForOwner(ctx context.Context, ownerID string) ([]models.Scene, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT id, name, is_public, actions, owner_id FROM scenes WHERE owner_id = $1 OR is_public ORDER BY name", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var s models.Scene
		var actions []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Public, &actions, &s.OwnerID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &s.Actions); err != nil {
			return nil, fmt.Errorf("scene %s actions: %w", s.ID, err)
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

// AddScene inserts a scene, assigning an id when absent
func (d *DB) AddScene(ctx context.Context, scene *models.Scene) error {
	if scene.ID == "" {
		scene.ID = uuid.NewString()
	}
	actions, err := json.Marshal(scene.Actions)
	if err != nil {
		return fmt.Errorf("marshal scene actions: %w", err)
	}
	_, err = d.pool.Exec(ctx,
		"INSERT INTO scenes (id, name, is_public, actions, owner_id) VALUES ($1, $2, $3, $4, $5)",
		scene.ID, scene.Name, scene.Public, actions, scene.OwnerID)
	return err
}

// UpdateScene replaces a scene's definition
func (d *DB) UpdateScene(ctx context.Context, scene *models.Scene) error {
	actions, err := json.Marshal(scene.Actions)
	if err != nil {
		return fmt.Errorf("marshal scene actions: %w", err)
	}
	_, err = d.pool.Exec(ctx,
		"UPDATE scenes SET name = $1, is_public = $2, actions = $3 WHERE id = $4 AND owner_id = $5",
		scene.Name, scene.Public, actions, scene.ID, scene.OwnerID)
	return err
}

// DeleteScene removes a scene
func (d *DB) DeleteScene(ctx context.Context, id, ownerID string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM scenes WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}

// GetRoomsForOwner fetches the owner's rooms
func (d *DB) GetRoomsForOwner(ctx context.Context, ownerID string) ([]models.Room, error) {
	rows, err := d.pool.Query(ctx, "SELECT id, name, owner_id FROM rooms WHERE owner_id = $1 ORDER BY name", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.OwnerID); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// AddRoom inserts a room, assigning an id when absent
func (d *DB) AddRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	_, err := d.pool.Exec(ctx, "INSERT INTO rooms (id, name, owner_id) VALUES ($1, $2, $3)",
		room.ID, room.Name, room.OwnerID)
	return err
}

// UpdateRoom renames a room
func (d *DB) UpdateRoom(ctx context.Context, room *models.Room) error {
	_, err := d.pool.Exec(ctx, "UPDATE rooms SET name = $1 WHERE id = $2 AND owner_id = $3",
		room.Name, room.ID, room.OwnerID)
	return err
}

// DeleteRoom removes a room and unassigns its devices
func (d *DB) DeleteRoom(ctx context.Context, id, ownerID string) error {
	if _, err := d.pool.Exec(ctx, "UPDATE devices SET room_id = NULL WHERE room_id = $1", id); err != nil {
		return err
	}
	_, err := d.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}

// GetDevicesForOwner fetches the owner's devices
func (d *DB) GetDevicesForOwner(ctx context.Context, ownerID string) ([]models.Device, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT device_id, name, type, room_id, state, mqtt_topic, accepted, owner_id FROM devices WHERE owner_id = $1 ORDER BY name", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(&device.ID, &device.Name, &device.Type, &device.RoomID, &device.State,
			&device.MQTTTopic, &device.Accepted, &device.OwnerID); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

// GetDeviceByID fetches a device, (nil, nil) when absent
func (d *DB) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	err := d.pool.QueryRow(ctx,
		"SELECT device_id, name, type, room_id, state, mqtt_topic, accepted, owner_id FROM devices WHERE device_id = $1", id).
		Scan(&device.ID, &device.Name, &device.Type, &device.RoomID, &device.State,
			&device.MQTTTopic, &device.Accepted, &device.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateDevice changes a device's name and room assignment
func (d *DB) UpdateDevice(ctx context.Context, id, name string, roomID *string) error {
	_, err := d.pool.Exec(ctx, "UPDATE devices SET name = $1, room_id = $2 WHERE device_id = $3", name, roomID, id)
	return err
}

// UpdateDeviceState persists the latest state snapshot
func (d *DB) UpdateDeviceState(ctx context.Context, id string, state json.RawMessage) error {
	_, err := d.pool.Exec(ctx, "UPDATE devices SET state = $1 WHERE device_id = $2", state, id)
	return err
}

// DeleteDevice removes a device from the database
func (d *DB) DeleteDevice(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM devices WHERE device_id = $1", id)
	return err
}

// GetAllSchedules fetches all scene schedules
func (d *DB) GetAllSchedules(ctx context.Context) ([]models.SceneSchedule, error) {
	rows, err := d.pool.Query(ctx, "SELECT id, scene_id, cron_expression, enabled FROM scene_schedules")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []models.SceneSchedule
	for rows.Next() {
		var s models.SceneSchedule
		if err := rows.Scan(&s.ID, &s.SceneID, &s.CronExpression, &s.Enabled); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// AddSchedule inserts a scene schedule, assigning an id when absent
func (d *DB) AddSchedule(ctx context.Context, s *models.SceneSchedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := d.pool.Exec(ctx,
		"INSERT INTO scene_schedules (id, scene_id, cron_expression, enabled) VALUES ($1, $2, $3, $4)",
		s.ID, s.SceneID, s.CronExpression, s.Enabled)
	return err
}

// UpdateSchedule replaces a scene schedule
func (d *DB) UpdateSchedule(ctx context.Context, s *models.SceneSchedule) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE scene_schedules SET scene_id = $1, cron_expression = $2, enabled = $3 WHERE id = $4",
		s.SceneID, s.CronExpression, s.Enabled, s.ID)
	return err
}

// DeleteSchedule removes a scene schedule
func (d *DB) DeleteSchedule(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM scene_schedules WHERE id = $1", id)
	return err
}
