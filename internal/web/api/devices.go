package api

import (
	"log"

	"homepanel/internal/db"
	"homepanel/internal/engine"
	"homepanel/internal/models"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, publisher engine.CommandPublisher) {
	devices := r.Group("/devices")
	devices.Use(middleware.RequireAuth())
	{
		devices.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := dbConn.GetDevicesForOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch devices: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch devices"})
				return
			}
			if list == nil {
				list = []models.Device{}
			}
			c.JSON(200, list)
		})

		devices.GET("/:id", func(c *gin.Context) {
			device, ok := ownedDevice(c, dbConn)
			if !ok {
				return
			}
			c.JSON(200, device)
		})

		devices.PATCH("/:id", func(c *gin.Context) {
			device, ok := ownedDevice(c, dbConn)
			if !ok {
				return
			}
			var req webModels.UpdateDeviceRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if req.Name != nil {
				device.Name = *req.Name
			}
			if req.RoomID != nil {
				device.RoomID = req.RoomID
			}
			if err := dbConn.UpdateDevice(c, device.ID, device.Name, device.RoomID); err != nil {
				log.Printf("API: Failed to update device %s: %v", device.ID, err)
				c.JSON(500, gin.H{"error": "Failed to update device"})
				return
			}
			c.JSON(200, device)
		})

		devices.DELETE("/:id", func(c *gin.Context) {
			device, ok := ownedDevice(c, dbConn)
			if !ok {
				return
			}
			if err := dbConn.DeleteDevice(c, device.ID); err != nil {
				log.Printf("API: Failed to delete device %s: %v", device.ID, err)
				c.JSON(500, gin.H{"error": "Failed to delete device"})
				return
			}
			c.JSON(200, gin.H{"status": "Device deleted"})
		})

		// direct manual control from the UI, same command shape the
		// automation engine publishes
		devices.POST("/:id/command", func(c *gin.Context) {
			device, ok := ownedDevice(c, dbConn)
			if !ok {
				return
			}
			var req webModels.DeviceCommandRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			cmd := models.SetStateCommand{DeviceID: device.ID, Value: req.Value, Unit: req.Unit}
			if err := publisher.PublishCommand(cmd); err != nil {
				log.Printf("API: Failed to publish command for %s: %v", device.ID, err)
				c.JSON(500, gin.H{"error": "Failed to send command"})
				return
			}
			c.JSON(202, gin.H{"status": "Command sent"})
		})
	}
}

func ownedDevice(c *gin.Context, dbConn *db.DB) (*models.Device, bool) {
	userID := c.GetString("user_id")
	device, err := dbConn.GetDeviceByID(c, c.Param("id"))
	if err != nil {
		log.Printf("API: Failed to fetch device %s: %v", c.Param("id"), err)
		c.JSON(500, gin.H{"error": "Failed to fetch device"})
		return nil, false
	}
	if device == nil || device.OwnerID == nil || *device.OwnerID != userID {
		c.JSON(404, gin.H{"error": "Device not found"})
		return nil, false
	}
	return device, true
}
