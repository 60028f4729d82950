package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// Config holds all configuration for the shipping rates service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RedisURL string
	Services ServicesConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ServicesConfig holds the base URLs of the sibling services this service
// calls during checkout and deletion checks
type ServicesConfig struct {
	ProductsURL  string
	CustomersURL string
	OrdersURL    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8088"),
			Env:  getEnv("NODE_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: secrets.GetDBPassword(),
			DBName:   getEnv("DB_NAME", "shipping"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),
		Services: ServicesConfig{
			ProductsURL:  getEnv("PRODUCTS_SERVICE_URL", "http://products-service:8082"),
			CustomersURL: getEnv("CUSTOMERS_SERVICE_URL", "http://customers-service:8083"),
			OrdersURL:    getEnv("ORDERS_SERVICE_URL", "http://orders-service:8084"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Services.ProductsURL == "" {
		return fmt.Errorf("PRODUCTS_SERVICE_URL is required")
	}
	if c.Services.CustomersURL == "" {
		return fmt.Errorf("CUSTOMERS_SERVICE_URL is required")
	}
	if c.Services.OrdersURL == "" {
		return fmt.Errorf("ORDERS_SERVICE_URL is required")
	}
	return nil
}

// IsProduction returns true when running with a production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an integer environment variable or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
