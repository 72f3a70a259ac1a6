package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string

	// Database Config (optional; the gateway runs on the in-memory
	// session store and seeded users when no DATABASE_URL is set)
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	// Security
	JWTSecret      string
	CookieTTLHours int

	// Optional session expiry. 0 disables the check; explicit logout is the
	// only required invalidation path.
	SessionIdleTimeoutMin int

	// SeedUsers holds "username:password" pairs ensured at startup.
	SeedUsers []SeedUser

	Upstream UpstreamConfig
}

type SeedUser struct {
	Username string
	Password string
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")

	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	dbMaxOpenConns := GetEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	dbMaxIdleConns := GetEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	dbConnMaxLifetimeMin := GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	jwtSecret := GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production")
	cookieTTLHours := GetEnvAsInt("COOKIE_TTL_HOURS", 72)
	idleTimeoutMin := GetEnvAsInt("SESSION_IDLE_TIMEOUT_MINUTES", 0)

	seedUsers := parseSeedUsers(GetEnv("SEED_USERS", "test-stud:test-stud"))

	AppConfig = &Config{
		Port:                  port,
		Environment:           environment,
		DatabaseURL:           dbURL,
		DBMaxOpenConns:        dbMaxOpenConns,
		DBMaxIdleConns:        dbMaxIdleConns,
		DBConnMaxLifetimeMin:  dbConnMaxLifetimeMin,
		JWTSecret:             jwtSecret,
		CookieTTLHours:        cookieTTLHours,
		SessionIdleTimeoutMin: idleTimeoutMin,
		SeedUsers:             seedUsers,
		Upstream:              LoadUpstreamConfig(),
	}

	return AppConfig
}

// parseSeedUsers splits "user:pass,user2:pass2". Malformed entries are
// skipped with a warning rather than failing startup.
func parseSeedUsers(raw string) []SeedUser {
	var users []SeedUser
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			log.Printf("[CONFIG] Skipping malformed seed user entry: %q", entry)
			continue
		}
		users = append(users, SeedUser{Username: parts[0], Password: parts[1]})
	}
	return users
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
