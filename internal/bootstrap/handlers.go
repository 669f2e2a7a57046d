package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/praxisnote/transcription/internal/health"
	"github.com/praxisnote/transcription/internal/realtime"
	"github.com/praxisnote/transcription/internal/transcript"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideTranscriptHandler(pipeline *transcript.Pipeline, store *transcript.Store, logger *slog.Logger) *transcript.Handler {
	return transcript.NewHandler(pipeline, store, logger.With("handler", "transcript"))
}

func ProvideRealtimeHandler(manager *realtime.Manager, logger *slog.Logger) *realtime.Handler {
	return realtime.NewHandler(manager, logger.With("handler", "realtime"))
}

func ProvideHealthHandler(db *gorm.DB, redisClient *redis.Client, manager *realtime.Manager) *health.Handler {
	return health.NewHandler(db, redisClient, manager)
}

type HandlerParams struct {
	fx.In

	TranscriptHandler *transcript.Handler
	RealtimeHandler   *realtime.Handler
	HealthHandler     *health.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	params.TranscriptHandler.RegisterRoutes(api)
	params.RealtimeHandler.RegisterRoutes(api)
	params.HealthHandler.RegisterRoutes(e)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideTranscriptHandler,
		ProvideRealtimeHandler,
		ProvideHealthHandler,
	),
	fx.Invoke(RegisterRoutes),
)
