package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/rs/zerolog"
)

// ErrorHandlerMiddleware handles panics and errors
func ErrorHandlerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().
					Str("request_id", GetRequestID(c)).
					Interface("panic", err).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   "Internal Server Error",
					Message: "An unexpected error occurred",
					Code:    http.StatusInternalServerError,
				})
			}
		}()

		c.Next()

		// Errors attached by handlers that did not write a response
		if len(c.Errors) > 0 && !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal Server Error",
				Message: "An unexpected error occurred",
				Code:    http.StatusInternalServerError,
			})
		}
	}
}
