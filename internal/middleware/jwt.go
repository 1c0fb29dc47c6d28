package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"social-service/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

func isPublicPath(c *gin.Context) bool {
	switch c.Request.URL.Path {
	case "/metrics", "/healthz":
		return true
	}
	return false
}

// JWTAuth validates an HS256 bearer token and stores the caller's user id and
// role on the context. Tokens without a role claim act as customers.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublicPath(c) {
			c.Next()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}

		tokenString := strings.TrimSpace(authHeader[7:])

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		role := models.RoleCustomer
		if raw, ok := claims["role"].(string); ok && raw != "" {
			parsed, ok := models.ParseActorRole(raw)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role in token"})
				return
			}
			role = parsed
		}

		username, _ := claims["username"].(string)

		c.Set(ContextUserID, int64(userID))
		c.Set(ContextUsername, username)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// ActorFromContext returns the caller set by JWTAuth.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return models.Actor{}, false
	}
	id, ok := userID.(int64)
	if !ok {
		return models.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	r, ok := role.(models.ActorRole)
	if !ok {
		r = models.RoleCustomer
	}
	return models.Actor{UserID: id, Role: r}, true
}
