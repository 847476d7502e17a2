package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"time"    // time expresses the grace window as a duration
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for windows.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	StoreDriver string        // persistence backend: "mysql" or "memory"
	DBUser      string        // database username
	DBPass      string        // database password (optional)
	DBHost      string        // database host address
	DBPort      string        // database port number
	DBName      string        // database name
	JWTSecret   string        // secret used to verify JWTs
	GraceWindow time.Duration // how far in the past a booking may start
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database variables
// are only required when the mysql store driver is selected.
func Load() Config {
	cfg := Config{
		Env:         must("APP_ENV"),                                            // environment (dev/test/prod)
		Port:        must("APP_PORT"),                                           // port to bind the HTTP server
		StoreDriver: envStr("STORE_DRIVER", "mysql"),                            // persistence backend
		JWTSecret:   must("JWT_SECRET"),                                         // secret used for verifying JWTs
		GraceWindow: time.Duration(envInt("GRACE_WINDOW_MIN", 5)) * time.Minute, // backdating tolerance
	}
	if cfg.StoreDriver == "mysql" {
		cfg.DBUser = must("DB_USER")      // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBHost = must("DB_HOST")      // database host
		cfg.DBPort = must("DB_PORT")      // database port
		cfg.DBName = must("DB_NAME")      // database name
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
