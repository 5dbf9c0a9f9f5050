package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taskdesk/docs"
	"taskdesk/internal/config"
	"taskdesk/internal/handlers"
	"taskdesk/internal/logging"
	"taskdesk/internal/middleware"
	"taskdesk/internal/repositories"
	"taskdesk/internal/routes"
	"taskdesk/internal/services"
)

const defaultConfigPath = "config/config.yaml"

// Run starts the API and blocks until shutdown. It returns the process exit code.
func Run() int {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logging.Init(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	ctx := context.Background()

	// === DB ===
	db, err := repositories.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, repositories.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logging.Logger.Errorf("[app][db][err] %v", err)
		return 1
	}
	if cfg.Database.Migrate {
		if err := repositories.Migrate(ctx, db); err != nil {
			logging.Logger.Errorf("[app][migrate][err] %v", err)
			_ = db.Close()
			return 1
		}
	}

	// === Repos ===
	taskRepo := repositories.NewTaskRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// === Services ===
	assignmentService := services.NewAssignmentService(taskRepo, projectRepo)
	transitionService := services.NewStatusTransitionService(taskRepo)
	queryService := services.NewTaskQueryService(taskRepo, services.ListingOptions{
		DefaultLimit: cfg.Listing.DefaultLimit,
		MaxLimit:     cfg.Listing.MaxLimit,
	})
	taskService := services.NewTaskService(taskRepo)
	commentService := services.NewCommentService(commentRepo, taskService)

	// === Handlers ===
	taskHandler := handlers.NewTaskHandler(assignmentService, transitionService, queryService, taskService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, routes.AuthOptions{
		Secret: []byte(cfg.Auth.JWTSecret),
		Leeway: cfg.Auth.Leeway,
	}, taskHandler, commentHandler)

	// === Run ===
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logging.Logger.Infof("[app] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Errorf("[app][listen][err] %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
		"database": func(context.Context) error {
			return db.Close()
		},
	})

	code := <-wait
	logging.Logger.Infof("[app] exited with code %d", code)
	return code
}
