package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a CORS middleware for the admin UI origins. With no origins
// configured every origin is allowed and credentials are not.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-Requested-With", "Accept"}
	config.ExposeHeaders = []string{"Content-Length", "Content-Disposition"}
	config.MaxAge = 12 * time.Hour

	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
		return cors.New(config)
	}

	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	for _, origin := range allowedOrigins {
		if strings.Contains(origin, "*") {
			config.AllowWildcard = true
			break
		}
	}
	return cors.New(config)
}
