package server

import (
	"context"
	"net/http"
	"time"

	"courtgrid/internal/auth"
	"courtgrid/internal/backend"
	"courtgrid/internal/booking"
	"courtgrid/internal/config"
	"courtgrid/internal/recurring"
	"courtgrid/internal/reservation"
	"courtgrid/internal/schedule"

	"github.com/gin-gonic/gin"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

// Deps are the shared collaborators the route handlers are built on.
type Deps struct {
	Backend  *backend.Client
	Store    *reservation.Store
	Cache    *schedule.Cache
	Policy   *schedule.Policy
	Sessions *recurring.Manager
}

func New(cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	builder := schedule.NewBuilder(deps.Backend, deps.Cache, deps.Policy)
	scheduleHandler := schedule.NewHandler(deps.Backend, builder, deps.Policy)

	bookingService := booking.NewService(deps.Backend, deps.Store, deps.Cache)
	bookingHandler := booking.NewHandler(bookingService)

	reconciler := recurring.NewReconciler(deps.Backend, deps.Sessions)
	recurringHandler := recurring.NewHandler(reconciler, bookingService)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/resources", scheduleHandler.ListResources)
		protected.GET("/availability/grid", scheduleHandler.GetGrid)
		protected.GET("/availability/dates", scheduleHandler.GetSelectableDates)

		protected.GET("/bookings", bookingHandler.List)
		protected.POST("/bookings", bookingHandler.Create)

		protected.POST("/recurring/check", recurringHandler.Check)
		protected.GET("/recurring/:sessionID", recurringHandler.Get)
		protected.POST("/recurring/:sessionID/alternative", recurringHandler.ApplyAlternative)
		protected.POST("/recurring/:sessionID/submit", recurringHandler.Submit)
		protected.DELETE("/recurring/:sessionID", recurringHandler.Abandon)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.POST("/bookings/:bookingID/confirm", bookingHandler.StatusAction("confirm"))
		admin.POST("/bookings/:bookingID/cancel", bookingHandler.StatusAction("cancel"))
		admin.POST("/bookings/:bookingID/start", bookingHandler.StatusAction("start"))
		admin.POST("/bookings/:bookingID/complete", bookingHandler.StatusAction("complete"))
		admin.POST("/bookings/:bookingID/no-show", bookingHandler.StatusAction("no_show"))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{router: router, config: cfg}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
