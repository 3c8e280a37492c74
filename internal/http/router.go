package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"meme-index/internal/config"
	mid "meme-index/internal/http/middleware"
	"meme-index/internal/metrics"
	red "meme-index/internal/redis"
	"meme-index/internal/tokens"
)

type Server struct{ *fiber.App }

// NewServer wires the routes. rdb may be nil, in which case rate limiting is
// off and readiness does not depend on Redis.
func NewServer(cfg config.Config, h *tokens.Handler, rdb *redis.Client, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path
		metrics.RecordHTTPRequest(route, strconv.Itoa(status))
		return err
	})
	if rdb != nil {
		app.Use(mid.RateLimit(cfg, rdb))
	}

	// liveness & readiness
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/readyz", func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.SendString("ready")
		}
		if err := red.Ping(c.Context(), rdb); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "redis not ready")
		}
		return c.SendString("ready")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/tokens", h.List)
	api.Get("/tokens/latest", h.Latest)
	api.Get("/tokens/:address", h.GetOne)

	return &Server{app}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(tokens.ErrorOut{Error: msg})
	}
}
