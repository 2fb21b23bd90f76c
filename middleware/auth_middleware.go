package middleware

import (
	"log"
	"net/http"

	"fxportal/api/utils"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest pulls the JWT from the cookie or the Authorization header.
func tokenFromRequest(c *gin.Context) string {
	tokenString, err := c.Cookie("jwt_token")
	if err == nil && tokenString != "" {
		return tokenString
	}
	tokenString = c.GetHeader("Authorization")
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}
	return tokenString
}

// AdminRequired gates the dashboard: a valid token with the admin role, or
// nothing.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			log.Println("AdminRequired: No JWT token found in cookie or header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			log.Printf("AdminRequired: Invalid JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		if claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// OptionalAuth attributes the request to a user when a valid token is
// present. It never aborts: tracking must not fail because a credential is
// stale, so an invalid token just degrades to anonymous.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString != "" {
			if claims, err := utils.ValidateJWT(tokenString); err == nil {
				c.Set("user_id", claims.UserID)
			} else {
				log.Printf("OptionalAuth: ignoring invalid token: %v", err)
			}
		}
		c.Next()
	}
}
