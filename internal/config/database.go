package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Database holds the postgres connection URL, taken from DATABASE_URL or
// assembled from the POSTGRES_* variables.
type Database struct {
	URL string
}

func loadPassword() (string, error) {
	password, ok := os.LookupEnv("POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func requireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil, fmt.Errorf("no %s env variable set", key)
		}
		values[key] = v
	}
	return values, nil
}

func NewDatabase() (*Database, error) {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		return &Database{URL: dbURL}, nil
	}

	env, err := requireEnv("POSTGRES_USER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB")
	if err != nil {
		return nil, fmt.Errorf("no DATABASE_URL set; %w", err)
	}

	password, err := loadPassword()
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	port, err := strconv.ParseUint(env["POSTGRES_PORT"], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("unable to convert port to int: %w", err)
	}

	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(env["POSTGRES_USER"], password),
		Host:     fmt.Sprintf("%s:%d", env["POSTGRES_HOST"], port),
		Path:     env["POSTGRES_DB"],
		RawQuery: "sslmode=" + url.QueryEscape(lookupString("POSTGRES_SSLMODE", "disable")),
	}

	return &Database{URL: u.String()}, nil
}

func (c Database) PoolConfig() (*pgxpool.Config, error) {
	return pgxpool.ParseConfig(c.URL)
}
