package models

import "homepanel/internal/models"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type AddRuleRequest struct {
	Name    string            `json:"name" binding:"required"`
	Enabled bool              `json:"enabled"`
	Trigger models.Trigger    `json:"trigger" binding:"required"`
	Action  models.RuleAction `json:"action" binding:"required"`
}

type UpdateRuleRequest struct {
	Name    *string            `json:"name"`
	Enabled *bool              `json:"enabled"`
	Trigger *models.Trigger    `json:"trigger"`
	Action  *models.RuleAction `json:"action"`
}

type AddSceneRequest struct {
	Name    string               `json:"name" binding:"required"`
	Public  bool                 `json:"is_public"`
	Actions []models.SceneAction `json:"actions"`
}

type UpdateSceneRequest struct {
	Name    *string               `json:"name"`
	Public  *bool                 `json:"is_public"`
	Actions *[]models.SceneAction `json:"actions"`
}

type AddRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateDeviceRequest struct {
	Name   *string `json:"name"`
	RoomID *string `json:"room_id"`
}

type DeviceCommandRequest struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type AddScheduleRequest struct {
	SceneID        string `json:"scene_id" binding:"required"`
	CronExpression string `json:"cron_expression" binding:"required"`
	Enabled        bool   `json:"enabled"`
}

type UpdateScheduleRequest struct {
	SceneID        *string `json:"scene_id"`
	CronExpression *string `json:"cron_expression"`
	Enabled        *bool   `json:"enabled"`
}
