package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
	Business BusinessConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTLMin int
}

type AIConfig struct {
	OpenAIAPIKey string
}

type BusinessConfig struct {
	// ReturnValuation is "selling_price" or "invoice_price".
	ReturnValuation string
}

// Load reads configuration from the environment, with .env as a fallback.
func Load() *Config {
	_ = godotenv.Load()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TOKEN_TTL_MINUTES", 720)
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("RETURN_VALUATION", "selling_price")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitAndTrim(viper.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL: viper.GetString("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:   viper.GetString("JWT_SECRET"),
			TokenTTLMin: viper.GetInt("JWT_TOKEN_TTL_MINUTES"),
		},
		AI: AIConfig{
			OpenAIAPIKey: viper.GetString("OPENAI_API_KEY"),
		},
		Business: BusinessConfig{
			ReturnValuation: viper.GetString("RETURN_VALUATION"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}
}

// splitAndTrim parses a comma-separated env value into a clean slice.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
