package handlers

import (
	"errors"
	"net/http"
	"strings"

	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"
)

const msgBadCredentials = "Incorrect username or password."

// authCredentials is the shared form payload for register and login.
type authCredentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Handler) bindCredentials(c *gin.Context) authCredentials {
	var in authCredentials
	if err := c.ShouldBind(&in); err != nil && h.log != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
	}
	return in
}

func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Username": ""})
}

// @Summary      Register
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      302
// @Failure      200  {string}  string  "form re-rendered with a flash message"
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	in := h.bindCredentials(c)

	_, err := h.services.SignUp(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if ve, ok := service.AsValidation(err); ok {
			h.flash(c, ve.Message)
			h.render(c, http.StatusOK, "register.html", gin.H{"Username": in.Username})
			return
		}
		if h.log != nil {
			h.log.Errorw("auth_sign_up_failed", "username", in.Username, "err", err)
		}
		h.renderError(c, http.StatusInternalServerError, "Could not register.")
		return
	}

	c.Redirect(http.StatusFound, "/auth/login")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Username": "", "Next": c.Query("next")})
}

// @Summary      Log in
// @Description  Sets the session cookie on success.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        next      query     string  false  "Local path to return to"
// @Success      302
// @Failure      200  {string}  string  "form re-rendered with a flash message"
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	in := h.bindCredentials(c)

	token, err := h.services.GenerateToken(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if !errors.Is(err, service.ErrUserNotFound) && !errors.Is(err, service.ErrInvalidPassword) {
			if h.log != nil {
				h.log.Errorw("auth_sign_in_failed", "username", in.Username, "err", err)
			}
			h.renderError(c, http.StatusInternalServerError, "Could not log in.")
			return
		}
		if h.log != nil {
			h.log.Infow("auth_sign_in_rejected", "username", in.Username)
		}
		h.flash(c, msgBadCredentials)
		h.render(c, http.StatusOK, "login.html", gin.H{"Username": in.Username, "Next": c.Query("next")})
		return
	}

	h.setSession(c, token)
	c.Redirect(http.StatusFound, safeNext(c.Query("next")))
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) setSession(c *gin.Context, token string) {
	h.setCookie(c, h.settings.CookieName, token, int(h.settings.TokenTTL.Seconds()))
}

func (h *Handler) clearSession(c *gin.Context) {
	h.setCookie(c, h.settings.CookieName, "", -1)
}

// safeNext only follows local absolute paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
