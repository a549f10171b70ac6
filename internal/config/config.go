package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/jesses-code-adventures/invoice/internal/models"
)

type Config struct {
	DatabaseURL      string
	DatabaseDriver   string
	OutputDir        string
	DefaultPrefix    string
	Workers          int
	NumberingRetries int
	LogLevel         string
	LogFormat        string
	LogOutput        string

	ArchiveBucket string
	ArchivePrefix string
	AWSRegion     string
	AWSProfile    string
}

// Overrides carries values set on the command line. Empty fields fall back to
// the environment and then to defaults.
type Overrides struct {
	DatabaseURL string
	OutputDir   string
	Debug       bool
}

func Load(o Overrides) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	dbConn := o.DatabaseURL
	if dbConn == "" {
		dbConn = getEnv("DATABASE_URL", "./invoice.db")
	}

	outputDir := o.OutputDir
	if outputDir == "" {
		outputDir = getEnv("OUTPUT_DIR", ".")
	}

	workers, err := getEnvInt("GENERATE_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("GENERATE_WORKERS must be at least 1, got %d", workers)
	}

	retries, err := getEnvInt("NUMBERING_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("NUMBERING_RETRIES must not be negative, got %d", retries)
	}

	logLevel := getEnv("LOG_LEVEL", "info")
	if o.Debug {
		logLevel = "debug"
	}

	defaultPrefix := getEnv("INVOICE_DEFAULT_PREFIX", "INV-")
	if err := models.ValidatePrefix(defaultPrefix); err != nil {
		return nil, fmt.Errorf("INVOICE_DEFAULT_PREFIX: %w", err)
	}

	cfg := &Config{
		DatabaseURL:      dbConn,
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "sqlite3"),
		OutputDir:        outputDir,
		DefaultPrefix:    defaultPrefix,
		Workers:          workers,
		NumberingRetries: retries,
		LogLevel:         logLevel,
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogOutput:        getEnv("LOG_OUTPUT", "stderr"),
		ArchiveBucket:    os.Getenv("ARCHIVE_S3_BUCKET"),
		ArchivePrefix:    os.Getenv("ARCHIVE_S3_PREFIX"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		AWSProfile:       os.Getenv("AWS_PROFILE"),
	}

	return cfg, nil
}

func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// Dump writes the effective configuration.
func (c *Config) Dump(w io.Writer) {
	fmt.Fprintf(w, "Database URL: %s\n", c.DatabaseURL)
	fmt.Fprintf(w, "Database Driver: %s\n", c.DatabaseDriver)
	fmt.Fprintf(w, "Output Dir: %s\n", c.OutputDir)
	fmt.Fprintf(w, "Default Prefix: %s\n", c.DefaultPrefix)
	fmt.Fprintf(w, "Workers: %d\n", c.Workers)
	fmt.Fprintf(w, "Numbering Retries: %d\n", c.NumberingRetries)
	if c.ArchiveEnabled() {
		fmt.Fprintf(w, "Archive: s3://%s/%s\n", c.ArchiveBucket, c.ArchivePrefix)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
