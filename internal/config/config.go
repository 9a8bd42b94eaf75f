package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a missing or unusable credential set. The server
// refuses to touch the network when Load returns it.
var ErrConfiguration = errors.New("configuration error")

const (
	DefaultAppID         = "doodeurim-challenge-app"
	DefaultServerAddress = ":8080"
	DefaultMigrations    = "./migrations"
)

// Config holds environment-based settings
type Config struct {
	Environment      string
	ServerAddress    string
	DatabaseURL      string
	MigrationsPath   string
	JWTSecret        string
	AppID            string
	InitialAuthToken string

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	MQTTBrokerURL string

	ContentPath     string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesKey       string
	SpacesAccessKey string
	SpacesSecretKey string

	Challenge Challenge
}

// Challenge holds the rules of one challenge instance.
type Challenge struct {
	Year                int
	Month               time.Month
	MaxDeclarationCount int
	RequirePrayer       bool
	DateGated           bool
	GroupSuffix         string
	Location            *time.Location
}

// InstanceKey names the persisted challenge document, e.g. "october2025".
func (c Challenge) InstanceKey() string {
	return fmt.Sprintf("%s%d", strings.ToLower(c.Month.String()), c.Year)
}

// Validate checks that a content set of the given number of days fits in
// the challenge month, so every day maps to a real date.
func (c Challenge) Validate(days int) error {
	last := time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if days < 1 || days > last {
		return fmt.Errorf("%w: %d content days do not fit %s %d (%d days)", ErrConfiguration, days, c.Month, c.Year, last)
	}
	return nil
}

// hostConfig is the JSON object a hosting environment may inject through
// APP_CONFIG_JSON. When present it is the only source of credentials.
type hostConfig struct {
	DatabaseURL      string `json:"databaseUrl"`
	JWTSecret        string `json:"jwtSecret"`
	AppID            string `json:"appId"`
	InitialAuthToken string `json:"initialAuthToken"`
}

// Load reads configuration from a host-injected object if present, else
// from environment variables (optionally seeded from a .env file).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading .env: %v", ErrConfiguration, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Environment:      getenv("APP_ENV"),
		ServerAddress:    orDefault(getenv("SERVER_ADDRESS"), DefaultServerAddress),
		MigrationsPath:   orDefault(getenv("MIGRATIONS_PATH"), DefaultMigrations),
		DatabaseURL:      getenv("DATABASE_URL"),
		JWTSecret:        getenv("JWT_SECRET"),
		AppID:            getenv("APP_ID"),
		InitialAuthToken: getenv("INITIAL_AUTH_TOKEN"),

		RedisAddress:  getenv("REDIS_ADDRESS"),
		RedisUsername: getenv("REDIS_USERNAME"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		MQTTBrokerURL: getenv("MQTT_BROKER_URL"),

		ContentPath:     getenv("CONTENT_PATH"),
		UseSpaces:       getenv("USE_SPACES") == "true",
		SpacesEndpoint:  getenv("SPACES_ENDPOINT"),
		SpacesRegion:    getenv("SPACES_REGION"),
		SpacesBucket:    getenv("SPACES_BUCKET"),
		SpacesKey:       orDefault(getenv("SPACES_CONTENT_KEY"), "content/challenge.yaml"),
		SpacesAccessKey: getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: getenv("SPACES_SECRET_KEY"),
	}

	if raw := strings.TrimSpace(getenv("APP_CONFIG_JSON")); raw != "" {
		var host hostConfig
		if err := json.Unmarshal([]byte(raw), &host); err != nil {
			return nil, fmt.Errorf("%w: APP_CONFIG_JSON is not valid JSON: %v", ErrConfiguration, err)
		}
		cfg.DatabaseURL = host.DatabaseURL
		cfg.JWTSecret = host.JWTSecret
		if host.AppID != "" {
			cfg.AppID = host.AppID
		}
		if host.InitialAuthToken != "" {
			cfg.InitialAuthToken = host.InitialAuthToken
		}
	}
	cfg.AppID = orDefault(cfg.AppID, DefaultAppID)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is required", ErrConfiguration)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrConfiguration)
	}

	challenge, err := loadChallenge(getenv)
	if err != nil {
		return nil, err
	}
	cfg.Challenge = challenge
	return cfg, nil
}

func loadChallenge(getenv func(string) string) (Challenge, error) {
	c := Challenge{
		Year:                2025,
		Month:               time.October,
		MaxDeclarationCount: 5,
		RequirePrayer:       true,
		GroupSuffix:         "셀",
	}
	var err error
	if c.Year, err = intVar(getenv, "CHALLENGE_YEAR", c.Year); err != nil {
		return c, err
	}
	month, err := intVar(getenv, "CHALLENGE_MONTH", int(c.Month))
	if err != nil {
		return c, err
	}
	if month < 1 || month > 12 {
		return c, fmt.Errorf("%w: CHALLENGE_MONTH must be 1-12, got %d", ErrConfiguration, month)
	}
	c.Month = time.Month(month)
	if c.MaxDeclarationCount, err = intVar(getenv, "CHALLENGE_MAX_DECLARATIONS", c.MaxDeclarationCount); err != nil {
		return c, err
	}
	if c.MaxDeclarationCount < 1 {
		return c, fmt.Errorf("%w: CHALLENGE_MAX_DECLARATIONS must be positive", ErrConfiguration)
	}
	if v := getenv("CHALLENGE_REQUIRE_PRAYER"); v != "" {
		c.RequirePrayer = v == "true"
	}
	c.DateGated = getenv("CHALLENGE_DATE_GATED") == "true"
	if v, ok := lookup(getenv, "CHALLENGE_GROUP_SUFFIX"); ok {
		c.GroupSuffix = v
	}

	tz := orDefault(getenv("CHALLENGE_TIMEZONE"), "Asia/Seoul")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return c, fmt.Errorf("%w: CHALLENGE_TIMEZONE %q: %v", ErrConfiguration, tz, err)
	}
	c.Location = loc
	return c, nil
}

// lookup treats the literal value "-" as an explicit empty string so a
// suffix can be disabled from the environment.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "-":
		return "", true
	}
	return v, true
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %v", ErrConfiguration, key, err)
	}
	return n, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
