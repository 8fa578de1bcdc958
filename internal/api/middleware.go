package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/apperror"
	"github.com/wuwenbin0122/applytrackr/internal/auth"
)

var errMalformedAuthHeader = apperror.Unauthenticated("Authorization header missing or malformed")

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

const userIDKey = "userID"

// RequireAuth accepts only "Authorization: Bearer <token>". On success the user
// id is stored on the gin context and on the request context.
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !ok || scheme != "Bearer" || token == "" {
			abortWithError(c, errMalformedAuthHeader)
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			abortWithError(c, auth.ErrInvalidToken)
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(apperror.KindOf(err)), gin.H{
		"message": apperror.SafeMessage(err),
	})
}

// RequestLogger logs one line per request. Query strings are left out so
// nothing sensitive in them ends up in the logs.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID := c.GetString(userIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
