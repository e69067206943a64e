package router

import (
	"net/http"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/auth"
	"github.com/namwkim/dataviz-storytelling/internal/cars"
	"github.com/namwkim/dataviz-storytelling/internal/dashboard"
	"github.com/namwkim/dataviz-storytelling/internal/middleware"
	"github.com/namwkim/dataviz-storytelling/internal/telemetry"
	"github.com/namwkim/dataviz-storytelling/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Dashboard *dashboard.Service
	Cars      *cars.Service
	Auth      *auth.Service
	Tokens    *auth.Tokens
	Uploader  dashboard.Uploader

	Logger      *zap.Logger
	ServiceName string
	CORSOrigins []string
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.ServiceName != "" {
		r.Use(telemetry.Middleware(deps.ServiceName))
	}

	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ───── PAGES ─────
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	pages := web.NewHandler()
	r.GET("/", pages.Dashboard)
	r.GET("/tutorial", pages.Tutorial)

	// ───── H1B ─────
	h1b := dashboard.NewHandler(deps.Dashboard, deps.Uploader, deps.Logger)

	h1bAPI := r.Group("/api/h1b")
	{
		h1bAPI.GET("/options", h1b.Options)
		h1bAPI.GET("/dashboard", h1b.Dashboard)
		h1bAPI.GET("/panels/:panel", h1b.Panel)
	}

	exports := r.Group("/h1b")
	{
		exports.GET("/trend.svg", h1b.TrendSVG)
		exports.GET("/correlation.svg", h1b.CorrelationSVG)
		exports.GET("/breakdown.png", h1b.BreakdownPNG)
	}

	// ───── CARS ─────
	carsHandler := cars.NewHandler(deps.Cars, deps.Logger)

	carsAPI := r.Group("/api/cars")
	{
		carsAPI.GET("/options", carsHandler.Options)
		carsAPI.GET("/explore", carsHandler.Explore)
		carsAPI.GET("/overview", carsHandler.Overview)
		carsAPI.GET("/columns", carsHandler.Columns)
	}

	// ───── AUTH ─────
	authHandler := auth.NewHandler(deps.Auth)
	r.POST("/auth/login", authHandler.Login)

	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(deps.Tokens),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		admin.POST("/datasets/reload", func(c *gin.Context) {
			deps.Cars.Reload()
			h1b.Reload(c)
		})
		admin.GET("/datasets/stats", h1b.Stats)
		admin.POST("/snapshots/trend", h1b.PublishTrend)
	}

	return r, nil
}
