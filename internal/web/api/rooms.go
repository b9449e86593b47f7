package api

import (
	"log"

	"homepanel/internal/db"
	"homepanel/internal/models"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoomRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB) {
	rooms := r.Group("/rooms")
	rooms.Use(middleware.RequireAuth())
	{
		rooms.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := dbConn.GetRoomsForOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch rooms: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch rooms"})
				return
			}
			if list == nil {
				list = []models.Room{}
			}
			c.JSON(200, list)
		})

		rooms.POST("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.AddRoomRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			room := models.Room{Name: req.Name, OwnerID: userID}
			if err := dbConn.AddRoom(c, &room); err != nil {
				log.Printf("API: Failed to create room: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create room"})
				return
			}
			c.JSON(201, room)
		})

		rooms.PATCH("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.AddRoomRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			room := models.Room{ID: c.Param("id"), Name: req.Name, OwnerID: userID}
			if err := dbConn.UpdateRoom(c, &room); err != nil {
				log.Printf("API: Failed to update room %s: %v", room.ID, err)
				c.JSON(500, gin.H{"error": "Failed to update room"})
				return
			}
			c.JSON(200, room)
		})

		rooms.DELETE("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			roomID := c.Param("id")
			if err := dbConn.DeleteRoom(c, roomID, userID); err != nil {
				log.Printf("API: Failed to delete room %s: %v", roomID, err)
				c.JSON(500, gin.H{"error": "Failed to delete room"})
				return
			}
			c.JSON(200, gin.H{"status": "Room deleted"})
		})
	}
}
