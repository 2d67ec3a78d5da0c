package handlers

import (
	"net/http"
	"time"

	"bikeshare/internal/logger"
	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Settings are the HTTP-layer knobs taken from configuration.
type Settings struct {
	CookieName         string
	SecureCookie       bool
	TokenTTL           time.Duration
	FeedLimit          int
	MaxMultipartMemory int64
	// Uploads serves stored images under /uploads; nil disables the route.
	Uploads http.FileSystem
}

// DefaultSettings are used by NewHandler.
var DefaultSettings = Settings{
	CookieName:         "session",
	TokenTTL:           time.Hour,
	FeedLimit:          20,
	MaxMultipartMemory: 32 << 20,
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	settings Settings
}

// NewHandler constructs a new HTTP handler with default settings.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return NewHandlerWithSettings(services, log, DefaultSettings)
}

func NewHandlerWithSettings(services *service.Service, log *logger.Logger, settings Settings) *Handler {
	if settings.CookieName == "" {
		settings.CookieName = DefaultSettings.CookieName
	}
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = DefaultSettings.TokenTTL
	}
	if settings.FeedLimit <= 0 {
		settings.FeedLimit = DefaultSettings.FeedLimit
	}
	if settings.MaxMultipartMemory <= 0 {
		settings.MaxMultipartMemory = DefaultSettings.MaxMultipartMemory
	}
	return &Handler{services: services, log: log, settings: settings}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)
	router.MaxMultipartMemory = h.settings.MaxMultipartMemory
	router.SetHTMLTemplate(mustParseTemplates())
	router.NoRoute(h.loadUser, func(c *gin.Context) {
		h.renderError(c, http.StatusNotFound, "The requested URL was not found on the server.")
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/ws", h.wsConnect)

	if h.settings.Uploads != nil {
		router.StaticFS("/uploads", h.settings.Uploads)
	}

	h.registerAuthRoutes(router)
	h.registerPostRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth", h.loadUser)
	{
		auth.GET("/register", h.registerForm)
		auth.POST("/register", h.register)
		auth.GET("/login", h.loginForm)
		auth.POST("/login", h.login)
		auth.GET("/logout", h.logout)
	}
}

func (h *Handler) registerPostRoutes(r *gin.Engine) {
	site := r.Group("/", h.loadUser)
	{
		site.GET("/", h.index)
		site.GET("/:id/view", h.view)
	}

	member := r.Group("/", h.loadUser, h.requireLogin)
	{
		member.GET("/myposts", h.myPosts)
		member.GET("/create", h.createForm)
		member.POST("/create", h.create)
		member.GET("/:id/update", h.updateForm)
		member.POST("/:id/update", h.update)
		member.POST("/:id/delete", h.delete)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		api.GET("/activity", h.getActivity)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
