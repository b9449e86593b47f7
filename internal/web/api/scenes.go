package api

import (
	"log"

	"homepanel/internal/db"
	"homepanel/internal/models"
	"homepanel/internal/taskqueue"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterSceneRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, queue *taskqueue.Queue) {
	scenes := r.Group("/scenes")
	scenes.Use(middleware.RequireAuth())
	{
		scenes.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := dbConn.GetScenesForOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch scenes: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch scenes"})
				return
			}
			if list == nil {
				list = []models.Scene{}
			}
			c.JSON(200, list)
		})

		scenes.POST("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.AddSceneRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			scene := models.Scene{
				Name:    req.Name,
				Public:  req.Public,
				Actions: req.Actions,
				OwnerID: userID,
			}
			if err := dbConn.AddScene(c, &scene); err != nil {
				log.Printf("API: Failed to create scene: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create scene"})
				return
			}
			c.JSON(201, scene)
		})

		scenes.PATCH("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			sceneID := c.Param("id")
			var req webModels.UpdateSceneRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, err := dbConn.GetSceneByID(c, sceneID)
			if err != nil {
				log.Printf("API: Failed to fetch scene %s: %v", sceneID, err)
				c.JSON(500, gin.H{"error": "Failed to fetch scene"})
				return
			}
			if existing == nil || existing.OwnerID != userID {
				c.JSON(404, gin.H{"error": "Scene not found"})
				return
			}

			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.Public != nil {
				existing.Public = *req.Public
			}
			if req.Actions != nil {
				existing.Actions = *req.Actions
			}

			if err := dbConn.UpdateScene(c, existing); err != nil {
				log.Printf("API: Failed to update scene %s: %v", sceneID, err)
				c.JSON(500, gin.H{"error": "Failed to update scene"})
				return
			}
			c.JSON(200, existing)
		})

		scenes.DELETE("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			sceneID := c.Param("id")
			if err := dbConn.DeleteScene(c, sceneID, userID); err != nil {
				log.Printf("API: Failed to delete scene %s: %v", sceneID, err)
				c.JSON(500, gin.H{"error": "Failed to delete scene"})
				return
			}
			c.JSON(200, gin.H{"status": "Scene deleted"})
		})

		scenes.POST("/:id/activate", func(c *gin.Context) {
			userID := c.GetString("user_id")
			sceneID := c.Param("id")

			scene, err := dbConn.GetSceneByID(c, sceneID)
			if err != nil {
				log.Printf("API: Failed to fetch scene %s: %v", sceneID, err)
				c.JSON(500, gin.H{"error": "Failed to fetch scene"})
				return
			}
			if scene == nil || (!scene.Public && scene.OwnerID != userID) {
				c.JSON(404, gin.H{"error": "Scene not found"})
				return
			}

			if err := queue.EnqueueSceneRun(scene.ID); err != nil {
				log.Printf("API: Failed to enqueue scene %s: %v", scene.ID, err)
				c.JSON(500, gin.H{"error": "Failed to activate scene"})
				return
			}
			c.JSON(202, gin.H{"status": "Scene activation queued"})
		})
	}
}
