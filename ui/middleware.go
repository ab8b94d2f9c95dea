package ui

import (
	"net/http"

	"dataviz/app"
	"dataviz/internal/errors"
	"dataviz/internal/logging"
	"dataviz/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "dataviz.session"

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(logging.GinMiddleware())
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context()).Error("panic serving request", "panic", recovered)
		fail(c, errors.InternalError("internal server error"))
	}))
}

// sessionMiddleware resolves the visitor's session from its cookie, issuing
// a fresh one when the cookie is missing or stale.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(s.cookieName)
		sess, created := s.sessions.Resolve(raw)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.cookieName, sess.ID().String(), int(s.sessionTTL.Seconds()), "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func workspace(c *gin.Context) app.Workspace {
	return c.MustGet(sessionKey).(*session.Session)
}

// fail writes the standard error reply with a status derived from the
// error code.
func fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	log := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "code", errors.GetCode(err), "error", err)
	} else {
		log.Info("request rejected", "path", c.Request.URL.Path, "code", errors.GetCode(err), "error", err)
	}
	// client errors carry their cause; server errors only the summary
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = errors.Message(err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// succeed writes a successful reply; payload keys sit beside "success".
func succeed(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}
