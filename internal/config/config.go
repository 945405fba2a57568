package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Strings for identifiers and secrets, ints for
// durations and costs. Optional fields fall back to sensible defaults so a
// bare development environment still boots.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign admin session tokens
	SessionTTLDays int    // admin cookie session time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	AdminEmail     string // address that receives lead notifications
	EmailAPIKey    string // transactional email provider API key (empty disables dispatch)
	EmailFrom      string // From header for outgoing notifications
	UploadDir      string // directory where property images are persisted
	PublicBaseURL  string // base URL prefixed to stored image paths
	SeedEmail      string // email of the seed admin account
	SeedPassword   string // password of the seed admin account
	SeedName       string // display name of the seed admin account
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		SessionTTLDays: intOr("SESSION_TTL_DAYS", 7),
		BcryptCost:     intOr("BCRYPT_COST", 10),
		AdminEmail:     must("ADMIN_EMAIL"),
		EmailAPIKey:    os.Getenv("EMAIL_API_KEY"),
		EmailFrom:      strOr("EMAIL_FROM", "Pecho's Inmobiliaria <onboarding@resend.dev>"),
		UploadDir:      strOr("UPLOAD_DIR", "public"),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		SeedEmail:      strOr("SEED_ADMIN_EMAIL", "mp@mp.com"),
		SeedPassword:   strOr("SEED_ADMIN_PASSWORD", "mp"),
		SeedName:       strOr("SEED_ADMIN_NAME", "Administrador"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the variable's value or a default when it is unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr parses the variable as an integer or returns the default. A value
// that is present but malformed is a configuration mistake and fatal.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
