// Package config provides persistent configuration for the prayer-times CLI.
//
// Configuration is stored as JSON at ~/.config/prayer-times/config.json
// (XDG-compliant). The merge priority is: CLI flags > environment > config
// file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
)

const (
	configDirName  = "prayer-times"
	configFileName = "config.json"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = buildValidKeys()

var scalarKeys = []string{
	"latitude", "longitude", "timezone",
	"method", "madhab", "high_latitude_rule",
	"time_format",
	"prayers",
	"cache_dir",
	"dhikr_reminders",
	"mqtt_broker", "mqtt_topic",
	"redis_addr",
	"server_addr",
}

var (
	azanSlots  = []string{"fajr", "sunrise", "dhuhr", "asr", "maghrib", "isha"}
	iqamaSlots = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}
)

func buildValidKeys() []string {
	keys := append([]string(nil), scalarKeys...)
	for _, s := range azanSlots {
		keys = append(keys, "azan_offset."+s)
	}
	for _, s := range iqamaSlots {
		keys = append(keys, "iqama_offset."+s)
	}
	for _, s := range azanSlots {
		keys = append(keys, "mute_azan."+s)
	}
	for _, s := range azanSlots {
		keys = append(keys, "mute_notification."+s)
	}
	return keys
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults).
type Config struct {
	Latitude         *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Timezone         string   `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Method           string   `json:"method,omitempty" validate:"omitempty,oneof=mwl egyptian karachi umm-al-qura dubai moonsighting isna kuwait qatar singapore tehran turkey other"`
	Madhab           string   `json:"madhab,omitempty" validate:"omitempty,oneof=shafi hanafi"`
	HighLatitudeRule string   `json:"high_latitude_rule,omitempty" validate:"omitempty,oneof=middle-of-the-night seventh-of-the-night twilight-angle"`
	TimeFormat       string   `json:"time_format,omitempty" validate:"omitempty,oneof=12h 24h"`
	Prayers          string   `json:"prayers,omitempty"` // comma-separated list
	CacheDir         string   `json:"cache_dir,omitempty"`

	AzanOffsets      map[string]int  `json:"azan_offsets,omitempty" validate:"omitempty,dive,keys,oneof=fajr sunrise dhuhr asr maghrib isha,endkeys,gte=-60,lte=60"`
	IqamaOffsets     map[string]int  `json:"iqama_offsets,omitempty" validate:"omitempty,dive,keys,oneof=fajr dhuhr asr maghrib isha,endkeys,gte=0,lte=60"`
	MuteAzan         map[string]bool `json:"mute_azan,omitempty" validate:"omitempty,dive,keys,oneof=fajr sunrise dhuhr asr maghrib isha,endkeys"`
	MuteNotification map[string]bool `json:"mute_notification,omitempty" validate:"omitempty,dive,keys,oneof=fajr sunrise dhuhr asr maghrib isha,endkeys"`
	DhikrReminders   *bool           `json:"dhikr_reminders,omitempty"`

	MQTTBroker string `json:"mqtt_broker,omitempty" validate:"omitempty,url"`
	MQTTTopic  string `json:"mqtt_topic,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty" validate:"omitempty,hostname_port"`
	ServerAddr string `json:"server_addr,omitempty"`

	// RedisPassword comes from the environment only and is never written.
	RedisPassword string `json:"-"`
	// LogLevel comes from the environment only.
	LogLevel string `json:"-" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Method:     "mwl",
		Madhab:     "shafi",
		TimeFormat: "24h",
		IqamaOffsets: map[string]int{
			"fajr": 20, "dhuhr": 20, "asr": 20, "maghrib": 10, "isha": 20,
		},
		ServerAddr: ":8080",
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON or fails validation, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It parses the value into the correct type and validates the result; on
// failure the config is left unchanged.
func (c *Config) Set(key, value string) error {
	next := c.clone()
	if err := next.set(key, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*c = next
	return nil
}

func (c *Config) set(key, value string) error {
	if group, slot, ok := strings.Cut(key, "."); ok {
		return c.setSlot(group, slot, value)
	}

	switch key {
	case "latitude", "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a number", key, value)
		}
		if key == "latitude" {
			c.Latitude = &v
		} else {
			c.Longitude = &v
		}
	case "timezone":
		c.Timezone = value
	case "method":
		c.Method = strings.ToLower(value)
	case "madhab":
		c.Madhab = strings.ToLower(value)
	case "high_latitude_rule":
		c.HighLatitudeRule = strings.ToLower(value)
	case "time_format":
		c.TimeFormat = value
	case "prayers":
		if _, err := parsePrayerList(value); err != nil {
			return err
		}
		c.Prayers = value
	case "cache_dir":
		c.CacheDir = value
	case "dhikr_reminders":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid dhikr_reminders %q: must be true or false", value)
		}
		c.DhikrReminders = &v
	case "mqtt_broker":
		c.MQTTBroker = value
	case "mqtt_topic":
		c.MQTTTopic = value
	case "redis_addr":
		c.RedisAddr = value
	case "server_addr":
		c.ServerAddr = value
	default:
		return unknownKey(key)
	}
	return nil
}

func (c *Config) setSlot(group, slot, value string) error {
	switch group {
	case "azan_offset", "iqama_offset":
		if !validSlot(group, slot) {
			return unknownKey(group + "." + slot)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s.%s %q: must be an integer number of minutes", group, slot, value)
		}
		if group == "azan_offset" {
			c.AzanOffsets = setInt(c.AzanOffsets, slot, v)
		} else {
			c.IqamaOffsets = setInt(c.IqamaOffsets, slot, v)
		}
	case "mute_azan", "mute_notification":
		if !validSlot(group, slot) {
			return unknownKey(group + "." + slot)
		}
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s.%s %q: must be true or false", group, slot, value)
		}
		if group == "mute_azan" {
			c.MuteAzan = setBool(c.MuteAzan, slot, v)
		} else {
			c.MuteNotification = setBool(c.MuteNotification, slot, v)
		}
	default:
		return unknownKey(group + "." + slot)
	}
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	if group, slot, ok := strings.Cut(key, "."); ok {
		if !validSlot(group, slot) {
			return "", fmt.Errorf("unknown config key %q", key)
		}
		switch group {
		case "azan_offset":
			return getInt(c.AzanOffsets, slot), nil
		case "iqama_offset":
			return getInt(c.IqamaOffsets, slot), nil
		case "mute_azan":
			return getBool(c.MuteAzan, slot), nil
		default:
			return getBool(c.MuteNotification, slot), nil
		}
	}

	switch key {
	case "latitude":
		return formatFloat(c.Latitude), nil
	case "longitude":
		return formatFloat(c.Longitude), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "madhab":
		return c.Madhab, nil
	case "high_latitude_rule":
		return c.HighLatitudeRule, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "dhikr_reminders":
		if c.DhikrReminders == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.DhikrReminders), nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "redis_addr":
		return c.RedisAddr, nil
	case "server_addr":
		return c.ServerAddr, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Unset clears key so its default applies again.
func (c *Config) Unset(key string) error {
	if group, slot, ok := strings.Cut(key, "."); ok {
		if !validSlot(group, slot) {
			return unknownKey(key)
		}
		switch group {
		case "azan_offset":
			delete(c.AzanOffsets, slot)
		case "iqama_offset":
			delete(c.IqamaOffsets, slot)
		case "mute_azan":
			delete(c.MuteAzan, slot)
		default:
			delete(c.MuteNotification, slot)
		}
		return nil
	}

	switch key {
	case "latitude":
		c.Latitude = nil
	case "longitude":
		c.Longitude = nil
	case "timezone":
		c.Timezone = ""
	case "method":
		c.Method = ""
	case "madhab":
		c.Madhab = ""
	case "high_latitude_rule":
		c.HighLatitudeRule = ""
	case "time_format":
		c.TimeFormat = ""
	case "prayers":
		c.Prayers = ""
	case "cache_dir":
		c.CacheDir = ""
	case "dhikr_reminders":
		c.DhikrReminders = nil
	case "mqtt_broker":
		c.MQTTBroker = ""
	case "mqtt_topic":
		c.MQTTTopic = ""
	case "redis_addr":
		c.RedisAddr = ""
	case "server_addr":
		c.ServerAddr = ""
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
}

func validSlot(group, slot string) bool {
	slots := azanSlots
	switch group {
	case "iqama_offset":
		slots = iqamaSlots
	case "azan_offset", "mute_azan", "mute_notification":
	default:
		return false
	}
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (c Config) clone() Config {
	out := c
	out.AzanOffsets = cloneMap(c.AzanOffsets)
	out.IqamaOffsets = cloneMap(c.IqamaOffsets)
	out.MuteAzan = cloneMap(c.MuteAzan)
	out.MuteNotification = cloneMap(c.MuteNotification)
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func setInt(m map[string]int, k string, v int) map[string]int {
	if m == nil {
		m = make(map[string]int)
	}
	m[k] = v
	return m
}

func setBool(m map[string]bool, k string, v bool) map[string]bool {
	if m == nil {
		m = make(map[string]bool)
	}
	m[k] = v
	return m
}

func getInt(m map[string]int, k string) string {
	v, ok := m[k]
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

func getBool(m map[string]bool, k string) string {
	v, ok := m[k]
	if !ok {
		return ""
	}
	return strconv.FormatBool(v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
