package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SpeechBaseURL     string
	SpeechAPIKey      string
	SpeechTimeout     time.Duration
	SpeechMaxSpeakers int
	SpeechLanguage    string

	RecognitionInterval time.Duration
	RecognitionMinBytes int
	FinalizeTimeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SpeechBaseURL:     getEnv("SPEECH_BASE_URL", "http://localhost:9090"),
		SpeechAPIKey:      getEnv("SPEECH_API_KEY", ""),
		SpeechTimeout:     getEnvDuration("SPEECH_TIMEOUT", 60*time.Second),
		SpeechMaxSpeakers: getEnvInt("SPEECH_MAX_SPEAKERS", 3),
		SpeechLanguage:    getEnv("SPEECH_LANGUAGE", ""),

		RecognitionInterval: getEnvDuration("RECOGNITION_INTERVAL", 3*time.Second),
		RecognitionMinBytes: getEnvInt("RECOGNITION_MIN_BYTES", 8192),
		FinalizeTimeout:     getEnvDuration("FINALIZE_TIMEOUT", 90*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
