package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/devconnector/internal/bootstrap"
	"anoa.com/devconnector/internal/config"
	"anoa.com/devconnector/internal/middleware"
	"anoa.com/devconnector/pkg/event"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/ratelimit"
	"anoa.com/devconnector/pkg/search"
	"anoa.com/devconnector/pkg/storage"
	"anoa.com/devconnector/pkg/validator"

	postHttp "anoa.com/devconnector/internal/modules/post/delivery/http"
	postService "anoa.com/devconnector/internal/modules/post/service"

	profileHttp "anoa.com/devconnector/internal/modules/profile/delivery/http"
	profileService "anoa.com/devconnector/internal/modules/profile/service"

	userHttp "anoa.com/devconnector/internal/modules/user/delivery/http"
	userService "anoa.com/devconnector/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the collaborators built by the caller. ImageStorage and
// ProfileIndex may be nil; the features that need them answer 503.
type Dependencies struct {
	Repositories bootstrap.Repositories
	ImageStorage storage.ImageStorage
	ProfileIndex search.ProfileIndex
	Limiter      ratelimit.Limiter
	Publisher    event.Publisher
}

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Logger
}

func NewServer(cfg *config.Config, deps Dependencies, log logger.Logger) (*Server, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	repos := deps.Repositories

	userSvc := userService.NewUserService(repos.Users, deps.ImageStorage, cfg.CloudinaryUploadFolder, cfg.JWTSecret, cfg.JWTTTL, log)
	userHandler := userHttp.NewUserHandler(userSvc, log)

	profileSvc := profileService.NewProfileService(repos.Profiles, repos.Users, repos.Posts, deps.ProfileIndex, deps.Publisher, log)
	profileHandler := profileHttp.NewProfileHandler(profileSvc, log)

	postSvc := postService.NewPostService(repos.Posts, repos.Users, deps.Limiter, cfg.RateLimitPost, deps.Publisher, log)
	postHandler := postHttp.NewPostHandler(postSvc, log)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("", userHandler.Register)
		users.PUT("/avatar", requireAuth, userHandler.UpdateAvatar)
	}

	auth := api.Group("/auth")
	{
		auth.POST("", userHandler.Login)
		auth.GET("", requireAuth, userHandler.Me)
	}

	// Public profile routes
	profiles := api.Group("/profile")
	{
		profiles.GET("", profileHandler.ListProfiles)
		profiles.GET("/search", profileHandler.SearchProfiles)
		profiles.GET("/user/:user_id", profileHandler.GetProfileByUserID)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.POST("/profile", profileHandler.UpsertProfile)
		protected.DELETE("/profile", profileHandler.DeleteAccount)
		protected.PUT("/profile/experience", profileHandler.AddExperience)
		protected.DELETE("/profile/experience/:exp_id", profileHandler.RemoveExperience)
		protected.PUT("/profile/education", profileHandler.AddEducation)
		protected.DELETE("/profile/education/:edu_id", profileHandler.RemoveEducation)

		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts", postHandler.ListPosts)
		protected.GET("/posts/user/:user_id", postHandler.GetPostsByUser)
		protected.GET("/posts/:id", postHandler.GetPost)
		protected.DELETE("/posts/:id", postHandler.DeletePost)
	}

	return &Server{
		engine: router,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.LegacyTokenHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
