package api

import (
	"log"

	"homepanel/internal/db"
	"homepanel/internal/models"
	"homepanel/internal/scheduler"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterScheduleRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, sched *scheduler.Scheduler) {
	schedules := r.Group("/schedules")
	schedules.Use(middleware.RequireAuth())
	{
		schedules.GET("", func(c *gin.Context) {
			list, err := dbConn.GetAllSchedules(c)
			if err != nil {
				log.Printf("API: Failed to fetch schedules: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch schedules"})
				return
			}
			if list == nil {
				list = []models.SceneSchedule{}
			}
			c.JSON(200, list)
		})

		schedules.POST("", func(c *gin.Context) {
			var req webModels.AddScheduleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			schedule := models.SceneSchedule{
				SceneID:        req.SceneID,
				CronExpression: req.CronExpression,
				Enabled:        req.Enabled,
			}
			if err := dbConn.AddSchedule(c, &schedule); err != nil {
				log.Printf("API: Failed to create schedule: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create schedule"})
				return
			}
			reloadSchedules(c, sched)
			c.JSON(201, schedule)
		})

		schedules.PATCH("/:id", func(c *gin.Context) {
			scheduleID := c.Param("id")
			var req webModels.UpdateScheduleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			all, err := dbConn.GetAllSchedules(c)
			if err != nil {
				log.Printf("API: Failed to fetch schedules: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch schedules"})
				return
			}
			var existing *models.SceneSchedule
			for i := range all {
				if all[i].ID == scheduleID {
					existing = &all[i]
					break
				}
			}
			if existing == nil {
				c.JSON(404, gin.H{"error": "Schedule not found"})
				return
			}

			if req.SceneID != nil {
				existing.SceneID = *req.SceneID
			}
			if req.CronExpression != nil {
				existing.CronExpression = *req.CronExpression
			}
			if req.Enabled != nil {
				existing.Enabled = *req.Enabled
			}

			if err := dbConn.UpdateSchedule(c, existing); err != nil {
				log.Printf("API: Failed to update schedule %s: %v", scheduleID, err)
				c.JSON(500, gin.H{"error": "Failed to update schedule"})
				return
			}
			reloadSchedules(c, sched)
			c.JSON(200, existing)
		})

		schedules.DELETE("/:id", func(c *gin.Context) {
			scheduleID := c.Param("id")
			if err := dbConn.DeleteSchedule(c, scheduleID); err != nil {
				log.Printf("API: Failed to delete schedule %s: %v", scheduleID, err)
				c.JSON(500, gin.H{"error": "Failed to delete schedule"})
				return
			}
			reloadSchedules(c, sched)
			c.JSON(200, gin.H{"status": "Schedule deleted"})
		})
	}
}

func reloadSchedules(c *gin.Context, sched *scheduler.Scheduler) {
	if err := sched.ReloadSchedules(c); err != nil {
		// the mutation succeeded; stale cron entries are logged, not fatal
		log.Printf("API: Failed to reload schedules: %v", err)
	}
}
