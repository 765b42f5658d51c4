package mw

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"marketplace-booking-backend/internal/model"
)

const (
	ctxActorID = "mw.actor_id"
	ctxRole    = "mw.actor_role"
)

// Claims is the token payload issued by the accounts service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the Bearer token and stores the actor's identity on the
// request context. Tokens are HS256-signed with the shared secret; the
// subject claim carries the numeric user ID.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		actorID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		c.Set(ctxActorID, actorID)
		c.Set(ctxRole, model.UserRole(claims.Role))
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the actor holds one of the roles.
func RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorRole := Role(c)
		for _, r := range roles {
			if actorRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// ActorID returns the authenticated user's ID, or 0 outside Auth.
func ActorID(c *gin.Context) int64 {
	if v, ok := c.Get(ctxActorID); ok {
		return v.(int64)
	}
	return 0
}

// Role returns the authenticated user's role, or the empty role outside Auth.
func Role(c *gin.Context) model.UserRole {
	if v, ok := c.Get(ctxRole); ok {
		return v.(model.UserRole)
	}
	return ""
}
