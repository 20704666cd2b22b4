package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type StoreBackend string

const (
	BackendS3       StoreBackend = "s3"
	BackendDynamoDB StoreBackend = "dynamodb"

	defaultYelpBaseURL = "https://api.yelp.com"
)

// Config is everything the Lambda reads from its environment.
type Config struct {
	YelpTokenParameter string
	YelpBaseURL        string
	YelpSearchLimit    int

	StoreBackend   StoreBackend
	StoreContainer string
	StoreObject    string

	LogLevel slog.Level
}

// Load reads the configuration through getenv (os.Getenv in production).
// Missing required keys are all reported together.
func Load(getenv func(string) string) (Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	var errs []error
	required := func(key string) string {
		v := env(key)
		if v == "" {
			errs = append(errs, fmt.Errorf("config: required environment variable %s is not set", key))
		}
		return v
	}

	cfg := Config{
		YelpTokenParameter: required("YELP_TOKEN_PARAMETER"),
		StoreContainer:     required("STORE_CONTAINER_NAME"),
		StoreObject:        required("STORE_OBJECT_NAME"),
		YelpBaseURL:        envDefault(env("YELP_BASE_URL"), defaultYelpBaseURL),
		YelpSearchLimit:    envInt(env("YELP_SEARCH_LIMIT"), 0),
		LogLevel:           logLevel(env("LOG_LEVEL")),
	}

	switch backend := StoreBackend(strings.ToLower(env("STORE_BACKEND"))); backend {
	case "", BackendS3:
		cfg.StoreBackend = BackendS3
	case BackendDynamoDB:
		cfg.StoreBackend = BackendDynamoDB
	default:
		errs = append(errs, fmt.Errorf("config: unsupported STORE_BACKEND %q", backend))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func envInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func logLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}
