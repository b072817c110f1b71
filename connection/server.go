package connection

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tasky/config"
	"tasky/controller/task"
	"tasky/middleware"
	"tasky/services"
)

// NewRouter builds the HTTP engine with middleware, the health route and the task routes.
func NewRouter(cfg *config.Config, svc *services.TaskService, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	if len(cfg.CORSOrigins) == 0 {
		router.Use(cors.Default())
	} else {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		router.Use(cors.New(corsConfig))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	task.TaskController(router, svc, []byte(cfg.JWTSecret))
	return router
}

// StartServer opens the configured store and serves until ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.NewTaskService(st,
		services.WithLogger(logger),
		services.WithDeleteAllSentinel(cfg.DeleteAllSentinel),
		services.WithPreviewLimit(cfg.PreviewLimit),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
