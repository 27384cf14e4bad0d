package main

import (
	"os"
	"strconv"
	"strings"
)

// Config is sourced from the environment, optionally seeded from a .env file.
type Config struct {
	Addr                  string
	DSN                   string
	SigningKey            string
	SigningMethod         string
	ContextKey            string
	TokenExpiration       int
	ExtendedTokenDuration int
	TokenLookup           string
	AuthScheme            string
	Issuer                string
	Audience              []string
	CookieSecure          bool
}

func NewConfigFromEnv() *Config {
	return &Config{
		Addr:                  getEnv("FLIX_ADDR", ":8580"),
		DSN:                   getEnv("FLIX_DSN", "file::memory:?cache=shared"),
		SigningKey:            getEnv("FLIX_SIGNING_KEY", ""),
		SigningMethod:         getEnv("FLIX_SIGNING_METHOD", "HS256"),
		ContextKey:            getEnv("FLIX_CONTEXT_KEY", "jwt"),
		TokenExpiration:       getEnvInt("FLIX_TOKEN_EXPIRATION_HOURS", 24),
		ExtendedTokenDuration: getEnvInt("FLIX_EXTENDED_TOKEN_HOURS", 24*30),
		TokenLookup:           getEnv("FLIX_TOKEN_LOOKUP", "cookie:jwt"),
		AuthScheme:            getEnv("FLIX_AUTH_SCHEME", "Bearer"),
		Issuer:                getEnv("FLIX_ISSUER", "flix"),
		Audience:              getEnvList("FLIX_AUDIENCE"),
		CookieSecure:          getEnvBool("FLIX_COOKIE_SECURE", true),
	}
}

func (c *Config) GetSigningKey() string         { return c.SigningKey }
func (c *Config) GetSigningMethod() string      { return c.SigningMethod }
func (c *Config) GetContextKey() string         { return c.ContextKey }
func (c *Config) GetTokenExpiration() int       { return c.TokenExpiration }
func (c *Config) GetExtendedTokenDuration() int { return c.ExtendedTokenDuration }
func (c *Config) GetTokenLookup() string        { return c.TokenLookup }
func (c *Config) GetAuthScheme() string         { return c.AuthScheme }
func (c *Config) GetIssuer() string             { return c.Issuer }
func (c *Config) GetAudience() []string         { return c.Audience }
func (c *Config) GetCookieSecure() bool         { return c.CookieSecure }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
