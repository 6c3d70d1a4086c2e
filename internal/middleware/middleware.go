package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"gatherly/internal/helpers"
	"gatherly/internal/models"
	"gatherly/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdentityKey is where AuthMiddleware stores the resolved caller.
const IdentityKey = "identity"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request completion
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler logs errors deposited by handlers and converts anything that
// escaped without a response into a generic 500. Error details never reach
// the client from here.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
			}
		}
	}
}

// AuthMiddleware validates the bearer token and materializes the caller as an
// explicit Identity for downstream handlers. The profile lookup supplies the
// display name used in responses and notification messages; when it fails the
// token's own metadata is enough to continue.
func AuthMiddleware(userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := helpers.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			// Browser clients send the token as a cookie instead.
			cookieToken, err := c.Cookie("access_token")
			if err != nil {
				c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
				c.Abort()
				return
			}
			token = cookieToken
		}

		claims, err := helpers.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.Subject, "error", err)
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized access"))
			c.Abort()
			return
		}

		name := claims.MetadataName()
		profile, err := userService.GetProfile(c.Request.Context(), userID, token)
		if err != nil {
			logger.Info("Profile not found, using token metadata",
				"user_id", claims.Subject,
				"error", err,
			)
		} else if profile.DisplayName() != "" {
			name = profile.DisplayName()
		}

		c.Set(IdentityKey, helpers.Identity{
			ID:    userID,
			Name:  name,
			Email: claims.Email,
		})
		c.Set("access_token", token)
		c.Next()
	}
}
