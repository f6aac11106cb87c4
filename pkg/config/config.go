package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	Env                string
	PostgresConnStr    string
	MongoURI           string
	FCMProjectID       string
	FCMCredentialsPath string
	DispatchWorkers    int
	DispatchQueueSize  int
	SweepInterval      time.Duration
	SweepBatch         int
	SweepWorkers       int
	RetryCeiling       int
	RetryBackoffBase   time.Duration
	AttemptTimeout     time.Duration
	PendingGrace       time.Duration
}

func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PostgresConnStr:    getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:           getEnv("MONGO_URI", ""),
		FCMProjectID:       getEnv("FCM_PROJECT_ID", ""),
		FCMCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		DispatchWorkers:    getEnvInt("DISPATCH_WORKERS", 4),
		DispatchQueueSize:  getEnvInt("DISPATCH_QUEUE_SIZE", 256),
		SweepInterval:      getEnvDuration("SWEEP_INTERVAL", time.Minute),
		SweepBatch:         getEnvInt("SWEEP_BATCH", 100),
		SweepWorkers:       getEnvInt("SWEEP_WORKERS", 20),
		RetryCeiling:       getEnvInt("RETRY_CEILING", 5),
		RetryBackoffBase:   getEnvDuration("RETRY_BACKOFF_BASE", time.Minute),
		AttemptTimeout:     getEnvDuration("ATTEMPT_TIMEOUT", 5*time.Second),
		PendingGrace:       getEnvDuration("PENDING_GRACE", 30*time.Second),
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
		if n, err := strconv.Atoi(value); err == nil {
			return n
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
