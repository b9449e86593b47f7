package api

import (
	"log"

	"homepanel/auth"
	"homepanel/internal/models"
	"homepanel/internal/web/middleware"
	webModels "homepanel/internal/web/models"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterUserRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *pgxpool.Pool, authModule *auth.AuthModule) {
	users := r.Group("/users")
	users.Use(middleware.RequireAuth())
	{
		users.GET("/me", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var user models.User
			err := dbConn.QueryRow(c, "SELECT id, username, email FROM users WHERE id = $1", userID).
				Scan(&user.ID, &user.Name, &user.Email)
			if err != nil {
				log.Printf("API: Failed to fetch user %s: %v", userID, err)
				c.JSON(404, gin.H{"error": "User not found"})
				return
			}
			c.JSON(200, user)
		})

		users.POST("/me/password", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.ChangePasswordRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.ChangePassword(c, userID, req.OldPassword, req.NewPassword); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"status": "Password changed"})
		})
	}
}
