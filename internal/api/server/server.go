package server

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amit-3245/campus-complaint-portal/internal/auth"
	"github.com/amit-3245/campus-complaint-portal/internal/config"
	database "github.com/amit-3245/campus-complaint-portal/internal/db"
	"github.com/amit-3245/campus-complaint-portal/internal/repository"
	"github.com/amit-3245/campus-complaint-portal/internal/service"
	"github.com/amit-3245/campus-complaint-portal/internal/storage"

	"github.com/amit-3245/campus-complaint-portal/internal/api/handlers"
	"github.com/amit-3245/campus-complaint-portal/internal/api/middleware"
)

type Server struct {
	cfg     *config.Config
	db      *database.Client
	storage *storage.Client
	router  *gin.Engine
}

func New(cfg *config.Config, db *database.Client, storage *storage.Client) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode) // Set to Release for production
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		storage: storage,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.Server.CORSOrigins) == 0 || slices.Contains(s.cfg.Server.CORSOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.Server.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// IMPORTANT: "Authorization" must be allowed so the frontend can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	tokens := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.Issuer, s.cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repository.NewUserRepository(s.db.DB), tokens)
	complaintService := service.NewComplaintService(repository.NewComplaintRepository(s.db.DB), s.storage)

	authHandler := handlers.NewAuthHandler(authService)
	complaintHandler := handlers.NewComplaintHandler(complaintService, s.cfg.MaxUploadBytes())
	uploadHandler := handlers.NewUploadHandler(s.storage)

	requireAuth := middleware.RequireAuth(authService)

	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "complaint-desk"})
	})

	api := s.router.Group("/api")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/uploads/:filename", uploadHandler.Serve)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := api.Group("/")
		protected.Use(requireAuth)
		{
			protected.GET("/auth/profile", authHandler.Profile)

			// --- ANY SIGNED-IN USER ---
			protected.POST("/complaints", complaintHandler.CreateComplaint)
			protected.GET("/complaints/my", complaintHandler.ListMine)
			// Owner check happens in the service; admins get no override.
			protected.DELETE("/complaints/:id", complaintHandler.Delete)

			// --- ADMIN ONLY ---
			protected.GET("/complaints", middleware.RequireAdmin(), complaintHandler.ListAll)
			protected.GET("/complaints/summary", middleware.RequireAdmin(), complaintHandler.Summary)
			protected.PUT("/complaints/:id", middleware.RequireAdmin(), complaintHandler.UpdateStatus)
		}
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
