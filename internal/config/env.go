package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvLatitude      = "PRAYER_TIMES_LATITUDE"
	EnvLongitude     = "PRAYER_TIMES_LONGITUDE"
	EnvTimezone      = "PRAYER_TIMES_TIMEZONE"
	EnvMethod        = "PRAYER_TIMES_METHOD"
	EnvMQTTBroker    = "PRAYER_TIMES_MQTT_BROKER"
	EnvRedisAddr     = "PRAYER_TIMES_REDIS_ADDR"
	EnvRedisPassword = "PRAYER_TIMES_REDIS_PASSWORD"
	EnvLogLevel      = "PRAYER_TIMES_LOG_LEVEL"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PRAYER_TIMES_* environment variables onto the config
// and validates the result.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	next := c.clone()

	for env, field := range map[string]**float64{
		EnvLatitude:  &next.Latitude,
		EnvLongitude: &next.Longitude,
	} {
		raw := strings.TrimSpace(getenv(env))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a number", env, raw)
		}
		*field = &v
	}

	for env, field := range map[string]*string{
		EnvTimezone:      &next.Timezone,
		EnvMethod:        &next.Method,
		EnvMQTTBroker:    &next.MQTTBroker,
		EnvRedisAddr:     &next.RedisAddr,
		EnvRedisPassword: &next.RedisPassword,
		EnvLogLevel:      &next.LogLevel,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*field = v
		}
	}
	next.Method = strings.ToLower(next.Method)
	next.LogLevel = strings.ToLower(next.LogLevel)

	if err := next.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	*c = next
	return nil
}
