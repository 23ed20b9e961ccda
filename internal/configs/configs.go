/*
Package configs is responsible for loading and parsing the application's configuration.

Settings come from environment variables, optionally overlaid by a TOML file named
by CONFIG_FILE. The file, when present, wins over the environment so deployments
can ship one reviewed document instead of a pile of exports.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string `toml:"environment"`
	Port        int    `toml:"port"`

	// Security Settings
	AllowedOrigins []string `toml:"allowedOrigins"`

	// Durable Store Settings
	DataDir string `toml:"dataDir"`

	// Upload Storage Settings
	StorageBackend    string `toml:"storageBackend"`
	UploadDir         string `toml:"uploadDir"`
	S3BucketName      string `toml:"s3BucketName"`
	S3Endpoint        string `toml:"s3Endpoint"`
	S3AccessKeyID     string `toml:"s3AccessKeyID"`
	S3SecretAccessKey string `toml:"s3SecretAccessKey"`
}

// LoadConfig reads the configuration from environment variables, applies the
// optional TOML overlay, and validates the result.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	// --- Security Settings ---
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	// --- Durable Store Settings ---
	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}

	// --- Upload Storage Settings ---
	cfg.StorageBackend = os.Getenv("STORAGE_BACKEND")
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = "local"
	}

	cfg.UploadDir = os.Getenv("UPLOAD_DIR")
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}

	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	// --- TOML Overlay ---
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	return cfg, cfg.validate()
}

// validate performs cross-field checks after all sources are merged.
func (cfg *AppConfig) validate() error {
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local storage")
		}
	case "s3":
		if cfg.S3BucketName == "" || cfg.S3Endpoint == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
			return fmt.Errorf("S3_BUCKET_NAME, S3_ENDPOINT, S3_ACCESS_KEY_ID, and S3_SECRET_ACCESS_KEY are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected local or s3)", cfg.StorageBackend)
	}

	return nil
}
