package config

import (
	"log"
	"os"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string
	JWTSecret   string
	TokenTTL    time.Duration
	// RefreshWindow is how close to expiry a token must be before a
	// replacement is issued on the next authenticated response.
	RefreshWindow time.Duration
	StaticDir     string
	// RunnerURL points at the external code interpreter service. Empty
	// disables the /interp endpoint.
	RunnerURL string
}

var AppConfig Config

var portRe = regexp.MustCompile(`^[0-9]{1,5}$`)

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		DatabaseURL:   getEnv("DATABASE_URL", "scopepad.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTL:      time.Duration(getEnvAsInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		RefreshWindow: time.Duration(getEnvAsInt("REFRESH_WINDOW_MINUTES", 30)) * time.Minute,
		StaticDir:     getEnv("STATIC_DIR", "client/build"),
		RunnerURL:     getEnv("RUNNER_URL", ""),
	}

	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
}

// Validate checks the fields the server cannot run without.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.HTTPPort, validation.Required, validation.Match(portRe)),
		validation.Field(&c.DatabaseURL, validation.Required),
	)
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
