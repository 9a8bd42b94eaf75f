package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL": "postgres://localhost/doodeurim",
		"JWT_SECRET":   "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, DefaultAppID, cfg.AppID)
	assert.Equal(t, DefaultServerAddress, cfg.ServerAddress)
	assert.Equal(t, DefaultMigrations, cfg.MigrationsPath)
	assert.Equal(t, 2025, cfg.Challenge.Year)
	assert.Equal(t, time.October, cfg.Challenge.Month)
	assert.Equal(t, 5, cfg.Challenge.MaxDeclarationCount)
	assert.True(t, cfg.Challenge.RequirePrayer)
	assert.False(t, cfg.Challenge.DateGated)
	assert.Equal(t, "셀", cfg.Challenge.GroupSuffix)
	assert.Equal(t, "october2025", cfg.Challenge.InstanceKey())
	assert.Equal(t, "Asia/Seoul", cfg.Challenge.Location.String())
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"JWT_SECRET": "secret"}))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = FromEnv(envMap(map[string]string{"DATABASE_URL": "postgres://x"}))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFromEnv_HostObjectTakesPriority(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":    "postgres://env",
		"JWT_SECRET":      "env-secret",
		"APP_CONFIG_JSON": `{"databaseUrl":"postgres://host","jwtSecret":"host-secret","appId":"canvas-app","initialAuthToken":"tok"}`,
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://host", cfg.DatabaseURL)
	assert.Equal(t, "host-secret", cfg.JWTSecret)
	assert.Equal(t, "canvas-app", cfg.AppID)
	assert.Equal(t, "tok", cfg.InitialAuthToken)
}

func TestFromEnv_HostObjectWithoutCredentials(t *testing.T) {
	// env credentials are not consulted once a host object is injected
	_, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":    "postgres://env",
		"JWT_SECRET":      "env-secret",
		"APP_CONFIG_JSON": `{"appId":"canvas-app"}`,
	}))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFromEnv_InvalidHostObject(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"APP_CONFIG_JSON": "{not json"}))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFromEnv_ChallengeOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DATABASE_URL":               "postgres://x",
		"JWT_SECRET":                 "s",
		"CHALLENGE_YEAR":             "2026",
		"CHALLENGE_MONTH":            "3",
		"CHALLENGE_MAX_DECLARATIONS": "7",
		"CHALLENGE_REQUIRE_PRAYER":   "false",
		"CHALLENGE_DATE_GATED":       "true",
		"CHALLENGE_GROUP_SUFFIX":     "-",
		"CHALLENGE_TIMEZONE":         "UTC",
	}))
	require.NoError(t, err)
	assert.Equal(t, "march2026", cfg.Challenge.InstanceKey())
	assert.Equal(t, 7, cfg.Challenge.MaxDeclarationCount)
	assert.False(t, cfg.Challenge.RequirePrayer)
	assert.True(t, cfg.Challenge.DateGated)
	assert.Equal(t, "", cfg.Challenge.GroupSuffix)
}

func TestFromEnv_InvalidChallengeValues(t *testing.T) {
	base := map[string]string{"DATABASE_URL": "postgres://x", "JWT_SECRET": "s"}
	for key, val := range map[string]string{
		"CHALLENGE_MONTH":            "13",
		"CHALLENGE_YEAR":             "twenty",
		"CHALLENGE_MAX_DECLARATIONS": "0",
		"CHALLENGE_TIMEZONE":         "Nowhere/Land",
	} {
		env := map[string]string{}
		for k, v := range base {
			env[k] = v
		}
		env[key] = val
		_, err := FromEnv(envMap(env))
		assert.ErrorIs(t, err, ErrConfiguration, key)
	}
}

func TestChallenge_Validate(t *testing.T) {
	october := Challenge{Year: 2025, Month: time.October}
	assert.NoError(t, october.Validate(31))
	assert.NoError(t, october.Validate(30))
	assert.ErrorIs(t, october.Validate(32), ErrConfiguration)
	assert.ErrorIs(t, october.Validate(0), ErrConfiguration)

	september := Challenge{Year: 2025, Month: time.September}
	assert.ErrorIs(t, september.Validate(31), ErrConfiguration)

	leap := Challenge{Year: 2024, Month: time.February}
	assert.NoError(t, leap.Validate(29))
	assert.ErrorIs(t, Challenge{Year: 2025, Month: time.February}.Validate(29), ErrConfiguration)
}
