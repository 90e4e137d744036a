package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"aidanwoods.dev/go-paseto"
	"github.com/spf13/viper"
)

const VERSION = "1.2"

// Storage driver names accepted by STORAGE_DRIVER.
const (
	StorageDriverBolt     = "bolt"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Security    SecurityConfig
	SMTP        SMTPConfig
	Digest      DigestConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
	SSL  SSLConfig
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// StorageConfig selects the blob store backend. The bolt driver keeps a
// single database file under DataDir; the postgres driver uses the Database
// section; the memory driver is for tests and throwaway runs.
type StorageConfig struct {
	Driver  string
	DataDir string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SecurityConfig struct {
	// PASETO key types
	PasetoPrivateKey paseto.V4AsymmetricSecretKey
	PasetoPublicKey  paseto.V4AsymmetricPublicKey

	// Raw decoded bytes for services constructed from bytes
	PasetoPrivateKeyBytes []byte
	PasetoPublicKeyBytes  []byte
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// DigestConfig drives the daily reminder digest job. Timezone decides what
// "today" means; an empty SMTP host turns the whole job into a no-op.
type DigestConfig struct {
	Timezone      string
	IntervalHours int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("STORAGE_DRIVER", StorageDriverBolt)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cluckhub")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// SMTP defaults
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Cluck Hub")

	// Digest defaults
	v.SetDefault("DIGEST_TIMEZONE", "Australia/Sydney")
	v.SetDefault("DIGEST_INTERVAL_HOURS", 24)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Get base64 encoded keys
	privateKeyBase64 := v.GetString("PASETO_PRIVATE_KEY")
	publicKeyBase64 := v.GetString("PASETO_PUBLIC_KEY")

	// Validate required configuration
	if privateKeyBase64 == "" {
		return nil, fmt.Errorf("PASETO_PRIVATE_KEY is required")
	}
	if publicKeyBase64 == "" {
		return nil, fmt.Errorf("PASETO_PUBLIC_KEY is required")
	}

	// Decode base64 keys
	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding PASETO_PRIVATE_KEY: %w", err)
	}

	publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding PASETO_PUBLIC_KEY: %w", err)
	}

	// Convert bytes to paseto key types
	privateKey, err := paseto.NewV4AsymmetricSecretKeyFromBytes(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("error creating PASETO private key: %w", err)
	}

	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("error creating PASETO public key: %w", err)
	}

	driver := v.GetString("STORAGE_DRIVER")
	switch driver {
	case StorageDriverBolt, StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
		},
		Storage: StorageConfig{
			Driver:  driver,
			DataDir: v.GetString("DATA_DIR"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Security: SecurityConfig{
			PasetoPrivateKey:      privateKey,
			PasetoPublicKey:       publicKey,
			PasetoPrivateKeyBytes: privateKeyBytes,
			PasetoPublicKeyBytes:  publicKeyBytes,
		},
		Digest: DigestConfig{
			Timezone:      v.GetString("DIGEST_TIMEZONE"),
			IntervalHours: v.GetInt("DIGEST_INTERVAL_HOURS"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// DSN builds the postgres connection string for the postgres storage driver.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
