package api

import (
	"log"

	"homepanel/internal/db"
	"homepanel/internal/models"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
)

// EngineNotifier lets the API tell the engine about rule changes without
// importing it: created/updated rules get an immediate evaluation, deleted
// rules drop their cooldown state.
type EngineNotifier interface {
	RuleChanged(ruleID string)
	RuleDeleted(ruleID string)
}

func RegisterRuleRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, engine EngineNotifier) {
	rules := r.Group("/automations/rules")
	rules.Use(middleware.RequireAuth())
	{
		rules.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			all, err := dbConn.GetAllRules(c)
			if err != nil {
				log.Printf("API: Failed to fetch rules: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch rules"})
				return
			}
			owned := []models.Rule{}
			for _, rule := range all {
				if rule.OwnerID == userID {
					owned = append(owned, rule)
				}
			}
			c.JSON(200, owned)
		})

		rules.POST("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.AddRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			rule := models.Rule{
				Name:    req.Name,
				Enabled: req.Enabled,
				Trigger: req.Trigger,
				Action:  req.Action,
				OwnerID: userID,
			}
			if err := dbConn.AddRule(c, &rule); err != nil {
				log.Printf("API: Failed to create rule: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create rule"})
				return
			}
			if rule.Enabled {
				engine.RuleChanged(rule.ID)
			}
			c.JSON(201, rule)
		})

		rules.PATCH("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			ruleID := c.Param("id")
			var req webModels.UpdateRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, err := dbConn.GetRuleByID(c, ruleID)
			if err != nil {
				log.Printf("API: Failed to fetch rule %s: %v", ruleID, err)
				c.JSON(500, gin.H{"error": "Failed to fetch rule"})
				return
			}
			if existing == nil || existing.OwnerID != userID {
				c.JSON(404, gin.H{"error": "Rule not found"})
				return
			}

			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.Enabled != nil {
				existing.Enabled = *req.Enabled
			}
			if req.Trigger != nil {
				existing.Trigger = *req.Trigger
			}
			if req.Action != nil {
				existing.Action = *req.Action
			}

			if err := dbConn.UpdateRule(c, existing); err != nil {
				log.Printf("API: Failed to update rule %s: %v", ruleID, err)
				c.JSON(500, gin.H{"error": "Failed to update rule"})
				return
			}
			if existing.Enabled {
				engine.RuleChanged(existing.ID)
			}
			c.JSON(200, existing)
		})

		rules.DELETE("/:id", func(c *gin.Context) {
			userID := c.GetString("user_id")
			ruleID := c.Param("id")
			if err := dbConn.DeleteRule(c, ruleID, userID); err != nil {
				log.Printf("API: Failed to delete rule %s: %v", ruleID, err)
				c.JSON(500, gin.H{"error": "Failed to delete rule"})
				return
			}
			engine.RuleDeleted(ruleID)
			c.JSON(200, gin.H{"status": "Rule deleted"})
		})
	}
}
