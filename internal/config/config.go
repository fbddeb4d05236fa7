package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Reading sources.
const (
	SourceBackend  = "backend"
	SourceInfluxDB = "influxdb"
)

// Config holds the application's configuration.
type Config struct {
	Port            string
	BackendURL      string
	Source          string
	InfluxDBURL     string
	InfluxDBToken   string
	InfluxDBOrg     string
	InfluxDBBucket  string
	Floors          []int
	DefaultFloor    int
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	AllowedOrigins  []string
	ProxyEnabled    bool
	LogLevel        string
	LogPretty       bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("backend_url", "http://localhost:8088")
	v.SetDefault("source", SourceBackend)
	v.SetDefault("influxdb_url", "")
	v.SetDefault("influxdb_token", "")
	v.SetDefault("influxdb_org", "")
	v.SetDefault("influxdb_bucket", "bolt")
	v.SetDefault("floors", "1,2,3")
	v.SetDefault("default_floor", 1)
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("refresh_interval", "0s")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("proxy_enabled", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// LoadConfig loads the configuration from a .env file, the environment and
// an optional config.yaml in path. Environment variables win over the file.
func LoadConfig(path string) (Config, error) {
	//load env variables
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	floors, err := parseFloors(listValue(v, "floors"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		BackendURL:      strings.TrimRight(strings.TrimSpace(v.GetString("backend_url")), "/"),
		Source:          strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		InfluxDBURL:     v.GetString("influxdb_url"),
		InfluxDBToken:   v.GetString("influxdb_token"),
		InfluxDBOrg:     v.GetString("influxdb_org"),
		InfluxDBBucket:  v.GetString("influxdb_bucket"),
		Floors:          floors,
		DefaultFloor:    v.GetInt("default_floor"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		RefreshInterval: v.GetDuration("refresh_interval"),
		AllowedOrigins:  splitList(listValue(v, "allowed_origins")),
		ProxyEnabled:    v.GetBool("proxy_enabled"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that the server cannot start without.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	switch c.Source {
	case SourceBackend:
		u, err := url.Parse(c.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL, got %q", c.BackendURL)
		}
	case SourceInfluxDB:
		if c.InfluxDBURL == "" || c.InfluxDBToken == "" || c.InfluxDBOrg == "" || c.InfluxDBBucket == "" {
			return fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG and INFLUXDB_BUCKET environment variables")
		}
	default:
		return fmt.Errorf("unknown SOURCE %q (want %q or %q)", c.Source, SourceBackend, SourceInfluxDB)
	}
	if !c.HasFloor(c.DefaultFloor) {
		return fmt.Errorf("DEFAULT_FLOOR %d is not one of FLOORS %v", c.DefaultFloor, c.Floors)
	}
	if c.RequestTimeout < 0 || c.RefreshInterval < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT and REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// HasFloor reports whether floor is one of the configured floors.
func (c Config) HasFloor(floor int) bool {
	for _, f := range c.Floors {
		if f == floor {
			return true
		}
	}
	return false
}

func parseFloors(raw string) ([]int, error) {
	var floors []int
	seen := make(map[int]bool)
	for _, item := range splitList(raw) {
		f, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid floor %q in FLOORS: %w", item, err)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		floors = append(floors, f)
	}
	if len(floors) == 0 {
		return nil, fmt.Errorf("FLOORS must list at least one floor")
	}
	return floors, nil
}

// listValue reads key as a comma separated string whether it came from the
// environment ("1,2,3") or from a YAML sequence.
func listValue(v *viper.Viper, key string) string {
	switch val := v.Get(key).(type) {
	case []interface{}:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(val, ",")
	}
	return v.GetString(key)
}

// splitList splits a comma or whitespace separated list, dropping blanks.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
