package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port      string
	RedisAddr string
	MongoURI  string
	JWTSecret string

	// RoomTTL is the sliding expiry window on every room record.
	RoomTTL time.Duration
	// MinPlayers is the floor of active players required to start a round.
	MinPlayers int
	// RestartOnEnd makes ending a round flow straight into the next one
	// instead of parking the room in ended.
	RestartOnEnd bool
}

// Load reads the configuration from the environment, with defaults that
// work for local development.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		RedisAddr:    getEnv("REDIS_URI", "localhost:6379"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		RoomTTL:      getEnvDuration("ROOM_TTL", 12*time.Hour),
		MinPlayers:   getEnvInt("MIN_PLAYERS", 1),
		RestartOnEnd: getEnvBool("RESTART_ON_END", true),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
