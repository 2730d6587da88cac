package middleware

import (
	"net/http"
	"strings"

	"anoa.com/devconnector/pkg/response"
	"anoa.com/devconnector/pkg/token"
	"github.com/gin-gonic/gin"
)

// LegacyTokenHeader is the header older clients send the raw token in.
const LegacyTokenHeader = "x-auth-token"

type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}

		if tokenString == "" {
			tokenString = c.GetHeader(LegacyTokenHeader)
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		userID, err := token.Parse(m.secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		c.Set(response.UserIDKey, userID)
		c.Next()
	}
}
