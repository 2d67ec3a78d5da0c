package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashCookie = "flash"
	ctxFlashKey = "flashes"
	flashParam  = "m"
)

func mustParseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"formatDate": func(t time.Time) string { return t.Format(layoutDate) },
	}).ParseFS(templateFS, "templates/*.html"))
}

// RequestContext is what every page knows about the current request.
type RequestContext struct {
	User    *service.Actor
	Flashes []string
}

// requestContext collects the actor and drains pending flash messages.
func (h *Handler) requestContext(c *gin.Context) RequestContext {
	var rc RequestContext
	if a, ok := currentActor(c); ok {
		rc.User = &a
	}

	raw, err := c.Cookie(flashCookie)
	if err == nil && raw != "" {
		if vals, err := url.ParseQuery(raw); err == nil {
			rc.Flashes = append(rc.Flashes, vals[flashParam]...)
		}
	}
	pending := c.GetStringSlice(ctxFlashKey)
	rc.Flashes = append(rc.Flashes, pending...)
	if raw != "" || len(pending) > 0 {
		h.setCookie(c, flashCookie, "", -1)
	}
	return rc
}

// flash queues a one-shot message for the next rendered page, whether that
// is this response or the target of a redirect.
func (h *Handler) flash(c *gin.Context, msg string) {
	pending := append(c.GetStringSlice(ctxFlashKey), msg)
	c.Set(ctxFlashKey, pending)
	h.setCookie(c, flashCookie, url.Values{flashParam: pending}.Encode(), 0)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.settings.SecureCookie, true)
}

// render executes a page template with the request context attached.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Ctx"] = h.requestContext(c)
	c.HTML(status, name, data)
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error.html", gin.H{
		"Status":     status,
		"StatusText": http.StatusText(status),
		"Message":    message,
	})
	c.Abort()
}
