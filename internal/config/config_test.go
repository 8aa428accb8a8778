package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		DatabaseURL:   "test.db",
		HTTPPort:      "8080",
		JWTSecret:     "secret",
		TokenTTL:      time.Hour,
		RefreshWindow: 30 * time.Minute,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	noSecret := validConfig()
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badPort := validConfig()
	badPort.HTTPPort = "eighty"
	assert.Error(t, badPort.Validate())

	noDB := validConfig()
	noDB.DatabaseURL = ""
	assert.Error(t, noDB.Validate())
}
