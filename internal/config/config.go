package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Telegram TelegramConfig
	Solana   SolanaConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds reward-economy settings
type AppConfig struct {
	JWTSecret              string
	InitialBalance         int64
	ReferredInitialBalance int64
	AdDailyLimit           int
	MinWithdrawal          int64
}

// TelegramConfig holds Telegram bot settings
type TelegramConfig struct {
	BotToken string
}

// SolanaConfig holds withdrawal payout settings
type SolanaConfig struct {
	Network                string
	PayoutWalletPrivateKey string
	LamportsPerUnit        int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "rewards"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:              getEnv("JWT_SECRET", ""),
			InitialBalance:         getEnvInt64("INITIAL_BALANCE", 2000),
			ReferredInitialBalance: getEnvInt64("REFERRED_INITIAL_BALANCE", 2500),
			AdDailyLimit:           int(getEnvInt64("AD_DAILY_LIMIT", 20)),
			MinWithdrawal:          getEnvInt64("MIN_WITHDRAWAL", 10000),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			PayoutWalletPrivateKey: getEnv("SOLANA_PAYOUT_PRIVATE_KEY", ""),
			LamportsPerUnit:        getEnvInt64("SOLANA_LAMPORTS_PER_UNIT", 1000),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt64 gets an integer environment variable with a fallback default value
func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
