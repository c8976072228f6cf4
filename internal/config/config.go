package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable through STORAGE_TYPE.
const (
	StorageLocal = "local"
	StorageHTTP  = "http"
	StorageAzure = "azure"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	ScanTimeout        time.Duration
	MaxRequestBodySize int64

	// Image catalog
	ImageDir   string
	ReportPath string
	MarkerPath string

	// Storage backend
	StorageType      string
	ImageBaseURL     string
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	// Averaging
	AverageWorkers    int
	ParallelThreshold int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ScanTimeout:        parseDurationOrDefault("SCAN_TIMEOUT", 5*time.Minute),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		ImageDir:           getEnvOrDefault("IMAGE_DIR", "src/main/resources/images"),
		ReportPath:         getEnvOrDefault("REPORT_PATH", "image_info.json"),
		MarkerPath:         getEnvOrDefault("MARKER_PATH", "documentPokemon.flag"),
		StorageType:        strings.ToLower(getEnvOrDefault("STORAGE_TYPE", StorageLocal)),
		ImageBaseURL:       os.Getenv("IMAGE_BASE_URL"),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:     os.Getenv("AZURE_CONTAINER"),
		AverageWorkers:     int(parseIntOrDefault("AVERAGE_WORKERS", 0)),
		ParallelThreshold:  int(parseIntOrDefault("PARALLEL_THRESHOLD", 512*512)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and backend-specific settings.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.ScanTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, scan=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.ScanTimeout)
	}
	if c.AverageWorkers < 0 || c.ParallelThreshold < 0 {
		return fmt.Errorf("AVERAGE_WORKERS and PARALLEL_THRESHOLD must be >= 0 (got %d, %d)",
			c.AverageWorkers, c.ParallelThreshold)
	}
	if strings.TrimSpace(c.ReportPath) == "" || strings.TrimSpace(c.MarkerPath) == "" {
		return fmt.Errorf("REPORT_PATH and MARKER_PATH must not be empty")
	}

	switch c.StorageType {
	case StorageLocal:
		if strings.TrimSpace(c.ImageDir) == "" {
			return fmt.Errorf("IMAGE_DIR must not be empty for local storage")
		}
	case StorageHTTP:
		if c.ImageBaseURL == "" {
			return fmt.Errorf("IMAGE_BASE_URL is required for http storage")
		}
	case StorageAzure:
		if c.AzureAccountName == "" || c.AzureAccountKey == "" || c.AzureContainer == "" {
			return fmt.Errorf("AZURE_ACCOUNT_NAME, AZURE_ACCOUNT_KEY and AZURE_CONTAINER are required for azure storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %q", c.StorageType)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
