package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Cloudflare R2 (robot photos)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	// Engine rules. The start window and duration options are policy
	// the administrator configures, not code constants.
	StartWindowFrom     string // "HH:MM", inclusive
	StartWindowTo       string // "HH:MM", exclusive
	RegistrationOptions []int  // offered registration durations, days
	MinTournamentDays   int    // minimum end_date - start_date
	ScoreQuorum         int    // 0 means all assigned judges
	MatchSlotMinutes    int    // scheduling slot per match

	EnableDebugEndpoints bool
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	window := getEnvOrDefault("TOURNAMENT_START_WINDOW", "11:00-20:00")
	from, to, ok := strings.Cut(window, "-")
	if !ok {
		return nil, fmt.Errorf("TOURNAMENT_START_WINDOW must look like \"11:00-20:00\", got %q", window)
	}

	options, err := intListEnv("REGISTRATION_DURATION_OPTIONS", []int{3, 5, 7, 14})
	if err != nil {
		return nil, err
	}

	minDays, err := intEnv("MIN_TOURNAMENT_DAYS", 12)
	if err != nil {
		return nil, err
	}
	quorum, err := intEnv("SCORE_QUORUM", 0)
	if err != nil {
		return nil, err
	}
	if quorum < 0 {
		return nil, fmt.Errorf("SCORE_QUORUM must not be negative, got %d", quorum)
	}
	slotMinutes, err := intEnv("MATCH_SLOT_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if slotMinutes <= 0 {
		return nil, fmt.Errorf("MATCH_SLOT_MINUTES must be positive, got %d", slotMinutes)
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),

		StartWindowFrom:     strings.TrimSpace(from),
		StartWindowTo:       strings.TrimSpace(to),
		RegistrationOptions: options,
		MinTournamentDays:   minDays,
		ScoreQuorum:         quorum,
		MatchSlotMinutes:    slotMinutes,

		EnableDebugEndpoints: os.Getenv("ENABLE_DEBUG_ENDPOINTS") == "true",
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func intListEnv(key string, defaultValue []int) ([]int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid %s environment variable: %w", key, err)
		}
		values = append(values, value)
	}
	return values, nil
}
