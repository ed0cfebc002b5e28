package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Dashboard is the HTTP frontend. It triggers runs and manages settings.
type Dashboard struct {
	runner       *tracker.Runner
	settings     core.SettingsRepository
	defaultToken string
	listenAddr   string
	logger       *zap.Logger
	engine       *gin.Engine
	server       *http.Server
}

// settingsView never exposes the stored key itself
type settingsView struct {
	HasAPIKey     bool `json:"has_api_key"`
	Notifications bool `json:"notifications"`
	AutoSync      bool `json:"auto_sync"`
}

type settingsUpdate struct {
	APIKey        *string `json:"api_key"`
	Notifications *bool   `json:"notifications"`
	AutoSync      *bool   `json:"auto_sync"`
}

// NewDashboard creates the dashboard. defaultToken is used when a run request carries no bearer token.
func NewDashboard(
	runner *tracker.Runner,
	settings core.SettingsRepository,
	defaultToken string,
	listenAddr string,
	logger *zap.Logger,
) *Dashboard {
	d := &Dashboard{
		runner:       runner,
		settings:     settings,
		defaultToken: defaultToken,
		listenAddr:   listenAddr,
		logger:       logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), d.requestLogger())

	engine.GET("/healthz", d.health)
	api := engine.Group("/api")
	api.POST("/runs", d.startRun)
	api.GET("/runs/latest", d.latestRun)
	api.GET("/runs/progress", d.progress)
	api.GET("/settings", d.getSettings)
	api.PUT("/settings", d.updateSettings)
	api.DELETE("/settings/api-key", d.forgetAPIKey)

	d.engine = engine
	return d
}

// Handler exposes the router
func (d *Dashboard) Handler() http.Handler {
	return d.engine
}

// Start begins serving in the background
func (d *Dashboard) Start() error {
	d.server = &http.Server{
		Addr:              d.listenAddr,
		Handler:           d.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	d.logger.Info("Dashboard starting", zap.String("address", d.listenAddr))

	go func() {
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Dashboard server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waiting for in-flight requests
func (d *Dashboard) Stop() error {
	if d.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return d.server.Shutdown(ctx)
}

func (d *Dashboard) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

func (d *Dashboard) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (d *Dashboard) startRun(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		token = d.defaultToken
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "a mail provider access token is required"})
		return
	}

	result, err := d.runner.Run(c.Request.Context(), token)

	var authErr *core.AuthError
	var fetchErr *core.FetchError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, core.ErrNoMessages):
		c.JSON(http.StatusOK, gin.H{"message": err.Error(), "records": result.Records, "summary": result.Summary})
	case errors.Is(err, tracker.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (d *Dashboard) latestRun(c *gin.Context) {
	result := d.runner.Latest()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run has completed yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (d *Dashboard) progress(c *gin.Context) {
	c.JSON(http.StatusOK, d.runner.Status())
}

func (d *Dashboard) getSettings(c *gin.Context) {
	s, err := core.LoadSettings(c.Request.Context(), d.settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toView(s))
}

func (d *Dashboard) updateSettings(c *gin.Context) {
	var req settingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if req.APIKey != nil {
		if err := core.SaveAPIKey(ctx, d.settings, *req.APIKey); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, core.ErrInvalidAPIKey) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}

	current, err := core.LoadSettings(ctx, d.settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Notifications != nil || req.AutoSync != nil {
		notifications, autoSync := current.Notifications, current.AutoSync
		if req.Notifications != nil {
			notifications = *req.Notifications
		}
		if req.AutoSync != nil {
			autoSync = *req.AutoSync
		}
		if err := core.SavePreferences(ctx, d.settings, notifications, autoSync); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		current.Notifications, current.AutoSync = notifications, autoSync
	}

	d.logger.Info("Settings updated",
		zap.Bool("api_key_changed", req.APIKey != nil),
		zap.Bool("notifications", current.Notifications),
		zap.Bool("auto_sync", current.AutoSync))

	c.JSON(http.StatusOK, toView(current))
}

func (d *Dashboard) forgetAPIKey(c *gin.Context) {
	if err := core.ForgetAPIKey(c.Request.Context(), d.settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func toView(s *core.Settings) settingsView {
	return settingsView{
		HasAPIKey:     s.HasAPIKey(),
		Notifications: s.Notifications,
		AutoSync:      s.AutoSync,
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
