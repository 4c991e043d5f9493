package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/config"
	"github.com/audioguide-discovery/internal/delivery/http/handler"
	"github.com/audioguide-discovery/internal/delivery/http/middleware"
	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/pkg/metrics"
	"github.com/audioguide-discovery/internal/pkg/utils"
	"github.com/audioguide-discovery/internal/usecase/dto"
)

// HealthChecker - dependency probed by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server - Fiber HTTP server
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	guideHandler   *handler.GuideHandler
	catalogHandler *handler.CatalogHandler
	checks         map[string]HealthChecker
}

// NewServer wires middleware and routes. checks are probed by /health.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	guideHandler *handler.GuideHandler,
	catalogHandler *handler.CatalogHandler,
	checks map[string]HealthChecker,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Audioguide Discovery API",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		guideHandler:   guideHandler,
		catalogHandler: catalogHandler,
		checks:         checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(metrics.Middleware())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", metrics.Handler())
	s.app.Static("/static", s.config.Server.MediaDir, fiber.Static{
		ByteRange: true,
		MaxAge:    3600,
	})

	s.app.Get("/health", s.health)

	s.app.Get("/locations", s.catalogHandler.Locations)
	s.app.Get("/tags", s.catalogHandler.Tags)
	s.app.Get("/guides", s.guideHandler.Nearby)
	s.app.Post("/guides/:guideId/play", s.guideHandler.Play)
	s.app.Get("/media/:guideId", s.catalogHandler.Media)
	s.app.Get("/availableguides", s.catalogHandler.AvailableGuides)
	s.app.Get("/stats", s.catalogHandler.Statistics)
}

// health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Time: time.Now().UTC().Format(time.RFC3339)}
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Status = "unhealthy"
		}
	}

	if resp.Status != "healthy" {
		return utils.SendJSON(c, fiber.StatusServiceUnavailable, resp)
	}
	return utils.SendJSON(c, fiber.StatusOK, resp)
}

// App exposes the Fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler renders any error that escaped a handler in the AppError envelope
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return utils.SendError(c, appErr)
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
			return utils.SendError(c, apperrors.ErrInternalServer)
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: apperrors.New("HTTP_ERROR", fe.Message, code),
		})
	}
}
