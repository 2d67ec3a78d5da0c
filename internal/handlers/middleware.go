package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxActorKey     = "actor"
	ctxRequestIDKey = "requestId"
	requestIDHeader = "X-Request-ID"
)

// requestLogger tags each request with an id and logs its outcome.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	reqID := c.GetHeader(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Set(ctxRequestIDKey, reqID)
	c.Header(requestIDHeader, reqID)

	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	)
}

// sessionToken reads the session cookie, falling back to a bearer header.
func (h *Handler) sessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(h.settings.CookieName); err == nil && tok != "" {
		return tok
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// loadUser resolves the session into an Actor. Anonymous requests pass
// through untouched.
func (h *Handler) loadUser(c *gin.Context) {
	token := h.sessionToken(c)
	if token == "" {
		c.Next()
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		h.clearSession(c)
		c.Next()
		return
	}
	u, err := h.services.GetUser(c.Request.Context(), userID)
	if err != nil {
		if h.log != nil {
			h.log.Infow("session_user_lookup_failed", "user_id", userID, "err", err)
		}
		h.clearSession(c)
		c.Next()
		return
	}

	c.Set(ctxActorKey, service.Actor{UserID: u.ID, Username: u.Username})
	c.Next()
}

// requireLogin redirects anonymous requests to the login page.
func (h *Handler) requireLogin(c *gin.Context) {
	if _, ok := currentActor(c); ok {
		c.Next()
		return
	}
	c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.Path))
	c.Abort()
}

func currentActor(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return service.Actor{}, false
	}
	a, ok := v.(service.Actor)
	return a, ok
}

// userIdMiddleware guards the JSON API with a 401 instead of a redirect.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	token := h.sessionToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing session or Authorization header",
		})
		return
	}

	userId, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set("userId", userId)
	c.Next()
}
