package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"presto/internal/auth"
	"presto/internal/logger"
	"presto/internal/utils"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id and attaches a logger carrying it
// to the request context. Components add their own tag via logger.Scoped.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		reqLog := log.With().Str(logger.FieldRequestID, id).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		accessLog := logger.Component(reqLog, "api")
		event := accessLog.Info()
		if status >= 500 {
			event = accessLog.Error()
		} else if status >= 400 {
			event = accessLog.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

// CORS adds the headers the mobile and web clients need.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, Firebase-Instance-ID-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Authenticate verifies a bearer token when one is sent. Anonymous requests
// pass through; a token that fails verification is rejected.
func Authenticate(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		claims, err := v.Verify(c.Request.Context(), auth.BearerToken(header))
		if err != nil {
			log := logger.Scoped(c.Request.Context(), zerolog.Nop(), "api")
			log.Warn().Err(err).Msg("rejected ID token")
			utils.Error(c, utils.StatusUnauthenticated, "Jeton d'authentification invalide.")
			return
		}
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireUser rejects anonymous callers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.ClaimsFrom(c.Request.Context()) == nil {
			utils.Error(c, utils.StatusUnauthenticated, "Connexion requise.")
			return
		}
		c.Next()
	}
}
