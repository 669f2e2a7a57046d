package bootstrap

import (
	"log/slog"

	"github.com/praxisnote/transcription/internal/realtime"
	"github.com/praxisnote/transcription/internal/speech"
	"github.com/praxisnote/transcription/internal/transcript"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideRecognizer(cfg *Config, logger *slog.Logger) speech.Recognizer {
	return speech.NewClient(speech.Config{
		BaseURL:     cfg.SpeechBaseURL,
		APIKey:      cfg.SpeechAPIKey,
		Timeout:     cfg.SpeechTimeout,
		MaxSpeakers: cfg.SpeechMaxSpeakers,
		Language:    cfg.SpeechLanguage,
	}, logger)
}

func ProvideSlotArbiter(redisClient *redis.Client) realtime.SlotArbiter {
	if redisClient == nil {
		return realtime.NewMemoryArbiter()
	}
	return realtime.NewRedisArbiter(redisClient)
}

func ProvideSessionManager(cfg *Config, recognizer speech.Recognizer, store *transcript.Store, arbiter realtime.SlotArbiter, logger *slog.Logger) *realtime.Manager {
	return realtime.NewManager(realtime.ManagerConfig{
		Config: realtime.Config{
			RecognitionInterval: cfg.RecognitionInterval,
			MinBytesPerPass:     cfg.RecognitionMinBytes,
			FinalizeTimeout:     cfg.FinalizeTimeout,
		},
		Recognizer: recognizer,
		Store:      store,
		Arbiter:    arbiter,
		Logger:     logger,
	})
}

func ProvidePipeline(recognizer speech.Recognizer, store *transcript.Store, logger *slog.Logger) *transcript.Pipeline {
	return transcript.NewPipeline(recognizer, store, logger)
}

func CloseSessionsOnShutdown(lc fx.Lifecycle, manager *realtime.Manager) {
	lc.Append(fx.StopHook(manager.Close))
}

var VoiceModule = fx.Options(
	fx.Provide(
		ProvideRecognizer,
		ProvideSlotArbiter,
		ProvideSessionManager,
		ProvidePipeline,
	),
	fx.Invoke(CloseSessionsOnShutdown),
)
