package handlers

import (
	"taxonomy-service/internal/events"
	"taxonomy-service/internal/models"

	"github.com/gin-gonic/gin"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

// actorFrom collects the caller identity for audit events
func actorFrom(c *gin.Context) events.Actor {
	info := gosharedmw.GetActorInfo(c)
	actor := events.Actor{
		ID:        info.ActorID,
		Name:      info.ActorName,
		Email:     info.ActorEmail,
		ClientIP:  info.ClientIP,
		UserAgent: info.UserAgent,
	}
	if actor.ID == "" {
		actor.ID = c.GetString("user_id")
	}
	if actor.Email == "" {
		actor.Email = c.GetString("user_email")
	}
	return actor
}

func queryFlag(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
