package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/config"
	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/jobs"
	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/ratelimit"
	"anoa.com/schoolhub/pkg/storage"
	"anoa.com/schoolhub/pkg/token"
	appValidator "anoa.com/schoolhub/pkg/validator"
	"anoa.com/schoolhub/web"

	adminHttp "anoa.com/schoolhub/internal/modules/admin/delivery/http"
	adminRepo "anoa.com/schoolhub/internal/modules/admin/repository"
	adminService "anoa.com/schoolhub/internal/modules/admin/service"

	assignmentHttp "anoa.com/schoolhub/internal/modules/assignment/delivery/http"
	assignmentRepo "anoa.com/schoolhub/internal/modules/assignment/repository"
	assignmentService "anoa.com/schoolhub/internal/modules/assignment/service"

	attendanceHttp "anoa.com/schoolhub/internal/modules/attendance/delivery/http"
	attendanceRepo "anoa.com/schoolhub/internal/modules/attendance/repository"
	attendanceService "anoa.com/schoolhub/internal/modules/attendance/service"

	announcementHttp "anoa.com/schoolhub/internal/modules/announcement/delivery/http"
	announcementRepo "anoa.com/schoolhub/internal/modules/announcement/repository"
	announcementService "anoa.com/schoolhub/internal/modules/announcement/service"

	authHttp "anoa.com/schoolhub/internal/modules/auth/delivery/http"
	authRepo "anoa.com/schoolhub/internal/modules/auth/repository"
	authService "anoa.com/schoolhub/internal/modules/auth/service"
	"anoa.com/schoolhub/internal/modules/auth/session"

	dashboardHttp "anoa.com/schoolhub/internal/modules/dashboard/delivery/http"
	dashboardRepo "anoa.com/schoolhub/internal/modules/dashboard/repository"
	dashboardService "anoa.com/schoolhub/internal/modules/dashboard/service"

	progressHttp "anoa.com/schoolhub/internal/modules/progress/delivery/http"
	progressRepo "anoa.com/schoolhub/internal/modules/progress/repository"
	progressService "anoa.com/schoolhub/internal/modules/progress/service"

	rosterRepo "anoa.com/schoolhub/internal/modules/roster/repository"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"

	searchService "anoa.com/schoolhub/internal/modules/search/service"

	transferHttp "anoa.com/schoolhub/internal/modules/transfer/delivery/http"
	transferRepo "anoa.com/schoolhub/internal/modules/transfer/repository"
	transferService "anoa.com/schoolhub/internal/modules/transfer/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
}

// NewServer wires every module. A nil redisClient turns off login throttling
// and the live announcement feed.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		appValidator.Init(v)
	}

	fileStorage, err := newFileStorage(cfg)
	if err != nil {
		return nil, err
	}

	var searchSvc searchService.MeiliSearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	}

	sessions := session.NewManager(
		session.NewCookieStore(cfg.SessionSecret, cfg.SessionMaxAge, cfg.IsProduction()),
		cfg.SessionName,
	)
	renderer := view.NewRenderer(sessions)

	// Auth Module
	authSvc := authService.NewAuthService(
		authRepo.NewRepository(db),
		token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		ratelimit.NewLimiter(redisClient, "login", cfg.LoginRateLimit, cfg.LoginRateWindow),
		authService.Options{LegacySessionFallback: cfg.LegacySessionFallback},
	)
	authHandler := authHttp.NewAuthHandler(authSvc, sessions, renderer)
	authMiddleware := middleware.NewAuthMiddleware(authSvc, sessions)

	// Announcement Module
	announcementSvc := announcementService.NewAnnouncementService(
		announcementRepo.NewAnnouncementRepository(db), fileStorage, searchSvc, redisClient,
	)
	announcementHandler := announcementHttp.NewAnnouncementHandler(announcementSvc, renderer, redisClient)

	// Admin Module
	adminSvc := adminService.NewAdminService(adminRepo.NewAdminRepository(db))
	adminHandler := adminHttp.NewAdminHandler(adminSvc, renderer)

	// Dashboard Module
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo.NewDashboardRepository(db), announcementSvc)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc, renderer)

	// Classroom Modules
	rosterSvc := rosterService.NewRosterService(rosterRepo.NewRosterRepository(db))

	assignmentSvc := assignmentService.NewAssignmentService(assignmentRepo.NewAssignmentRepository(db), rosterSvc, fileStorage)
	assignmentHandler := assignmentHttp.NewAssignmentHandler(assignmentSvc, renderer)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo.NewAttendanceRepository(db), rosterSvc)
	attendanceHandler := attendanceHttp.NewAttendanceHandler(attendanceSvc, renderer)

	progressSvc := progressService.NewProgressService(progressRepo.NewProgressRepository(db), rosterSvc)
	progressHandler := progressHttp.NewProgressHandler(progressSvc, renderer)

	transferSvc := transferService.NewTransferService(transferRepo.NewTransferRepository(db), rosterSvc, fileStorage)
	transferHandler := transferHttp.NewTransferHandler(transferSvc, renderer)

	scheduler := jobs.NewScheduler()
	if searchSvc != nil {
		if err := scheduler.RegisterJob(jobs.NewReindexJob(announcementSvc, cfg.ReindexSchedule)); err != nil {
			return nil, err
		}
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Skip: func(c *gin.Context) bool {
			return strings.HasPrefix(c.Request.URL.Path, "/static/")
		},
	}))

	router.StaticFS("/static", http.FS(web.Static()))
	if cfg.CloudinaryURL == "" {
		router.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	router.Use(authMiddleware.LoadPrincipal())

	// Public pages
	router.GET("/", announcementHandler.Home)
	router.GET("/news", announcementHandler.NewsPage)
	router.GET("/news/:id", announcementHandler.NewsDetail)

	auth := router.Group("/auth")
	{
		auth.GET("/login", authHandler.LoginPage)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/register", authHandler.RegisterPage)
		auth.GET("/register/student", authHandler.StudentRegisterPage)
		auth.POST("/register/student", authHandler.RegisterStudent)
		auth.GET("/register/teacher", authHandler.TeacherRegisterPage)
		auth.POST("/register/teacher", authHandler.RegisterTeacher)
	}

	// Signed-in pages
	dashboard := router.Group("/dashboard")
	dashboard.Use(authMiddleware.RequireAuth())
	{
		dashboard.GET("", dashboardHandler.Show)
		dashboard.GET("/change-password", authHandler.ChangePasswordPage)
		dashboard.POST("/change-password", authHandler.ChangePassword)

		authors := dashboard.Group("/announcements")
		authors.Use(authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleTeacher))
		{
			authors.GET("/new", announcementHandler.NewPage)
			authors.POST("", announcementHandler.Create)
			authors.GET("/:id/edit", announcementHandler.EditPage)
			authors.POST("/:id/edit", announcementHandler.Update)
			authors.POST("/:id/delete", announcementHandler.Delete)
		}

		teachers := dashboard.Group("")
		teachers.Use(authMiddleware.RequireRoles(entity.RoleTeacher))
		{
			teachers.GET("/assignments/new", assignmentHandler.NewPage)
			teachers.POST("/assignments", assignmentHandler.Create)
			teachers.GET("/assignments/manage", assignmentHandler.TeacherList)
			teachers.GET("/assignments/:id/submissions", assignmentHandler.Submissions)
			teachers.POST("/assignments/:id/delete", assignmentHandler.Delete)
			teachers.POST("/submissions/:id/grade", assignmentHandler.Grade)
			teachers.GET("/attendance/take", attendanceHandler.TakePage)
			teachers.POST("/attendance/take", attendanceHandler.Take)
			teachers.GET("/progress/record", progressHandler.RecordPage)
			teachers.POST("/progress/record", progressHandler.Record)
		}

		students := dashboard.Group("")
		students.Use(authMiddleware.RequireRoles(entity.RoleStudent))
		{
			students.GET("/assignments", assignmentHandler.StudentList)
			students.GET("/assignments/:id/submit", assignmentHandler.SubmitPage)
			students.POST("/assignments/:id/submit", assignmentHandler.Submit)
			students.GET("/attendance/view", attendanceHandler.View)
			students.GET("/progress", progressHandler.View)
			students.GET("/tc/request", transferHandler.RequestPage)
			students.POST("/tc/request", transferHandler.Request)
			students.GET("/tc/my", transferHandler.Mine)
		}

		reviewers := dashboard.Group("/tc")
		reviewers.Use(authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleTeacher))
		{
			reviewers.GET("/manage", transferHandler.Manage)
			reviewers.POST("/:id/approve", transferHandler.Approve)
			reviewers.POST("/:id/reject", transferHandler.Reject)
		}
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoles(entity.RoleAdmin))
	{
		admin.GET("/codes", adminHandler.CodesPage)
		admin.POST("/codes", adminHandler.GenerateCode)
		admin.POST("/codes/:id/delete", adminHandler.DeleteCode)
		admin.GET("/users", adminHandler.UsersPage)
		admin.POST("/users/:kind/:id/reset-password", adminHandler.ResetPassword)
		admin.POST("/users/:kind/:id/delete", adminHandler.DeleteUser)
		admin.POST("/users/account/:id/teacher", adminHandler.AssignTeacher)
	}

	api := router.Group("/api")

	// Public routes (no auth required)
	api.POST("/auth/token", authHandler.IssueToken)
	api.GET("/announcements", announcementHandler.List)
	api.GET("/announcements/:id", announcementHandler.GetByID)
	api.GET("/search", announcementHandler.Search)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAPIAuth())
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/announcements/ws", announcementHandler.HandleWebSocket)

		authors := protected.Group("/announcements")
		authors.Use(authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleTeacher))
		{
			authors.POST("", announcementHandler.CreateJSON)
			authors.DELETE("/:id", announcementHandler.DeleteJSON)
		}

		protected.GET("/stats", authMiddleware.RequireRoles(entity.RoleAdmin), dashboardHandler.Stats)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}, nil
}

func newFileStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.CloudinaryURL != "" {
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		return s, nil
	}
	s, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts background jobs and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.scheduler.Start()

	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
